package api

import (
	"github.com/tidwall/gjson"
)

// LoginShape identifies which reply layout a login response used.
type LoginShape int

const (
	// LoginShapeUnknown means no bearer token could be extracted.
	LoginShapeUnknown LoginShape = iota
	// LoginShapeDirect is {token}.
	LoginShapeDirect
	// LoginShapeOAuth2 is {tokenType, accessToken}.
	LoginShapeOAuth2
	// LoginShapeTyped is {tokenType, token}.
	LoginShapeTyped
)

func (s LoginShape) String() string {
	switch s {
	case LoginShapeDirect:
		return "direct"
	case LoginShapeOAuth2:
		return "oauth2"
	case LoginShapeTyped:
		return "typed"
	default:
		return "unknown"
	}
}

// LoginResponse is the classified login reply.
type LoginResponse struct {
	Shape       LoginShape
	Token       string
	TokenType   string
	AccessToken string
}

// ParseLoginResponse classifies the data of a successful login envelope.
//
// A field counts as present only when it is a non-empty string. A direct token wins
// over every other field; tokenType with accessToken is joined as
// "<tokenType> <accessToken>".
func ParseLoginResponse(data gjson.Result) LoginResponse {
	token := stringField(data, "token")
	tokenType := stringField(data, "tokenType")
	accessToken := stringField(data, "accessToken")

	switch {
	case token != "" && tokenType != "":
		return LoginResponse{Shape: LoginShapeTyped, Token: token, TokenType: tokenType}
	case token != "":
		return LoginResponse{Shape: LoginShapeDirect, Token: token}
	case tokenType != "" && accessToken != "":
		return LoginResponse{Shape: LoginShapeOAuth2, TokenType: tokenType, AccessToken: accessToken}
	default:
		return LoginResponse{}
	}
}

// Bearer returns the normalised bearer string that is stored as the session token.
func (r LoginResponse) Bearer() (string, error) {
	switch r.Shape {
	case LoginShapeDirect, LoginShapeTyped:
		return r.Token, nil
	case LoginShapeOAuth2:
		return r.TokenType + " " + r.AccessToken, nil
	default:
		return "", ErrMalformedLoginResponse
	}
}

func stringField(data gjson.Result, name string) string {
	v := data.Get(name)
	if v.Type != gjson.String {
		return ""
	}
	return v.Str
}
