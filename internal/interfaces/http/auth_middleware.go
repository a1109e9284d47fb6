package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/facturas-api/pkg/jwt"
)

// LocalActor clave de Locals con la identidad del operador.
const LocalActor = "actor"

// AnonymousActor identidad cuando la autenticación está desactivada.
var AnonymousActor = jwt.Identity{Subject: "anonymous"}

// AuthMiddleware valida el Bearer Token JWT y guarda la identidad en c.Locals.
// Con secret vacío la autenticación está desactivada y el actor es anónimo.
func AuthMiddleware(secret, issuer string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if secret == "" {
			c.Locals(LocalActor, AnonymousActor)
			return c.Next()
		}
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return errorJSON(c, fiber.StatusUnauthorized, "MISSING_TOKEN", "En-tête Authorization requis.", nil)
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return errorJSON(c, fiber.StatusUnauthorized, "INVALID_TOKEN", "Format attendu : Bearer <token>.", nil)
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return errorJSON(c, fiber.StatusUnauthorized, "MISSING_TOKEN", "Jeton vide.", nil)
		}
		identity, err := jwt.Parse(secret, issuer, tokenString)
		if err != nil {
			return errorJSON(c, fiber.StatusUnauthorized, "INVALID_TOKEN", "Jeton invalide ou expiré.", nil)
		}
		c.Locals(LocalActor, identity)
		return c.Next()
	}
}

// GetActor devuelve la identidad del operador (después del middleware de auth).
func GetActor(c *fiber.Ctx) jwt.Identity {
	if v, ok := c.Locals(LocalActor).(jwt.Identity); ok {
		return v
	}
	return AnonymousActor
}
