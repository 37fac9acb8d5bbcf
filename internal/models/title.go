package models

type Title struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"type:varchar(256);not null;index"`
	Year        int    `gorm:"not null;index;check:chk_titles_year,year >= 0"`
	Description string `gorm:"type:text"`

	CategoryID *uint     `gorm:"index"`
	Category   *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
	Genres     []Genre   `gorm:"many2many:title_genres;constraint:OnDelete:CASCADE"`

	// Rating is AVG(reviews.score), filled by the title queries; nil when there are no reviews.
	Rating *float64 `gorm:"->;-:migration"`
}
