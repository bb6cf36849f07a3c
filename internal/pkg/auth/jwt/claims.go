package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the JWT claims issued by this server. Besides the
// standard expiry/issuer fields it carries the numeric user id, which is
// the only identity the realtime gateway and the REST API rely on.
type Payload struct {
	jwt.StandardClaims

	// UserID is the durable store's user id.
	UserID int64 `json:"userId"`
}
