// Package identity resolves who is acting on a request.
//
// Токен — проверенный канал. Hint из тела запроса — явное понижение
// доверия: используется только когда токена нет вообще, и каждый
// вызывающий видит Verified == false.
package identity

import (
	"errors"

	"aicademy/backend/config"
	"aicademy/backend/models"
	"aicademy/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrUnauthenticated = errors.New("unauthenticated: no verified identity and no identity hint")

// Identity describes the acting user and how much we trust the claim.
type Identity struct {
	Subject  string
	Name     string
	Email    string
	Verified bool
}

// Hint — caller-supplied identity, accepted only when the verified
// channel cannot be established.
type Hint struct {
	Subject string `json:"subject"`
	Name    string `json:"name"`
	Email   string `json:"email"`
}

// FromRequest prefers the JWT. The hint is consulted only when no token
// is present at all; an invalid token is still an error, not a downgrade.
func FromRequest(c *fiber.Ctx, db *gorm.DB, cfg *config.Config, hint Hint) (Identity, error) {
	if c.Get("Authorization") != "" {
		userID, err := utils.ExtractUserIDFromToken(c, cfg)
		if err != nil {
			return Identity{}, err
		}

		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			return Identity{}, err
		}

		return Identity{
			Subject:  user.Subject,
			Name:     user.Username,
			Email:    user.Email,
			Verified: true,
		}, nil
	}

	if hint.Subject != "" {
		return Identity{
			Subject:  hint.Subject,
			Name:     hint.Name,
			Email:    hint.Email,
			Verified: false,
		}, nil
	}

	return Identity{}, ErrUnauthenticated
}

// ResolveUser находит локальную запись по subject, создавая её при первом
// обращении (upsert-on-first-use).
func ResolveUser(db *gorm.DB, id Identity) (*models.User, error) {
	var user models.User
	err := db.Where("subject = ?", id.Subject).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	name := id.Name
	if name == "" {
		name = "Student"
	}
	user = models.User{
		Subject:  id.Subject,
		Username: name,
		Email:    id.Email,
		Role:     "student",
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// NewLocalSubject issues a subject for password-based accounts.
func NewLocalSubject() string {
	return "local:" + uuid.NewString()
}
