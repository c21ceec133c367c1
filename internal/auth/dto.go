package auth

import (
	"github.com/mateovidal/routewave-backend/pkg/db/models"
	"github.com/mateovidal/routewave-backend/pkg/enums"
)

// RegisterInput captures a self-service signup.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     enums.ActorRole
	Phone    string
}

// LoginInput captures a credential check.
type LoginInput struct {
	Email    string
	Password string
}

// RefreshInput carries the expired access token plus its paired refresh token.
type RefreshInput struct {
	AccessToken  string
	RefreshToken string
}

// TokenPair is an access token and the refresh token that can rotate it.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// LoginResult is what a successful login or refresh hands back.
type LoginResult struct {
	User   *models.User
	Tokens TokenPair
}
