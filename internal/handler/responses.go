package handler

import (
	"time"

	"github.com/Baaaki/yamdb/internal/models"
)

type slugResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type titleResponse struct {
	ID          uint           `json:"id"`
	Name        string         `json:"name"`
	Year        int            `json:"year"`
	Rating      *float64       `json:"rating"`
	Description string         `json:"description"`
	Genre       []slugResponse `json:"genre"`
	Category    *slugResponse  `json:"category"`
}

type reviewResponse struct {
	ID      uint      `json:"id"`
	Text    string    `json:"text"`
	Author  string    `json:"author"`
	Score   int       `json:"score"`
	PubDate time.Time `json:"pub_date"`
}

type commentResponse struct {
	ID      uint      `json:"id"`
	Text    string    `json:"text"`
	Author  string    `json:"author"`
	PubDate time.Time `json:"pub_date"`
}

type userResponse struct {
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Bio       string      `json:"bio"`
	Role      models.Role `json:"role"`
}

func toCategory(c models.Category) slugResponse {
	return slugResponse{Name: c.Name, Slug: c.Slug}
}

func toGenre(g models.Genre) slugResponse {
	return slugResponse{Name: g.Name, Slug: g.Slug}
}

func toCategories(in []models.Category) []slugResponse {
	out := make([]slugResponse, 0, len(in))
	for _, c := range in {
		out = append(out, toCategory(c))
	}
	return out
}

func toGenres(in []models.Genre) []slugResponse {
	out := make([]slugResponse, 0, len(in))
	for _, g := range in {
		out = append(out, toGenre(g))
	}
	return out
}

func toTitle(t *models.Title) titleResponse {
	resp := titleResponse{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Rating:      t.Rating,
		Description: t.Description,
		Genre:       toGenres(t.Genres),
	}
	if t.Category != nil {
		category := toCategory(*t.Category)
		resp.Category = &category
	}
	return resp
}

func toTitles(in []models.Title) []titleResponse {
	out := make([]titleResponse, 0, len(in))
	for i := range in {
		out = append(out, toTitle(&in[i]))
	}
	return out
}

func toReview(r *models.Review) reviewResponse {
	return reviewResponse{
		ID:      r.ID,
		Text:    r.Text,
		Author:  r.Author.Username,
		Score:   r.Score,
		PubDate: r.PubDate,
	}
}

func toReviews(in []models.Review) []reviewResponse {
	out := make([]reviewResponse, 0, len(in))
	for i := range in {
		out = append(out, toReview(&in[i]))
	}
	return out
}

func toComment(c *models.Comment) commentResponse {
	return commentResponse{
		ID:      c.ID,
		Text:    c.Text,
		Author:  c.Author.Username,
		PubDate: c.PubDate,
	}
}

func toComments(in []models.Comment) []commentResponse {
	out := make([]commentResponse, 0, len(in))
	for i := range in {
		out = append(out, toComment(&in[i]))
	}
	return out
}

func toUser(u *models.User) userResponse {
	return userResponse{
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Bio:       u.Bio,
		Role:      u.Role,
	}
}

func toUsers(in []models.User) []userResponse {
	out := make([]userResponse, 0, len(in))
	for i := range in {
		out = append(out, toUser(&in[i]))
	}
	return out
}
