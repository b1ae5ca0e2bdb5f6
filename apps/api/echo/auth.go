package echoapi

import (
	"sort"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/operaxhq/operax/core"
	"github.com/operaxhq/operax/core/manager"
)

var (
	// appJWTConfig is the default JWT auth middleware config; finalized by configureAuth.
	appJWTConfig = middleware.JWTConfig{
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    "managerToken",
		Claims:        new(Claims),
	}
	authConf          *core.Config
	contextManagerKey = "manager"
)

func configureAuth(conf *core.Config) {
	authConf = conf
	appJWTConfig.SigningKey = []byte(conf.SecretKey)
}

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64    `json:"oriat,omitempty"`
	Name         string   `json:"name,omitempty"`
	Email        string   `json:"email,omitempty"`
	IsAdmin      bool     `json:"is_admin,omitempty"`
	Roles        []string `json:"roles,omitempty"`
}

func GetManagerClaims(mgr manager.Manager, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	var oriat int64
	if len(origIat) > 0 {
		oriat = origIat[0]
	} else {
		oriat = nownix
	}

	claims := &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    authConf.AppName,
			Subject:   mgr.ID,
			Audience:  "Workshop",
			ExpiresAt: now.Add(authConf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Name:         mgr.Name,
		Email:        mgr.Email,
		IsAdmin:      mgr.IsAdmin(),
		Roles:        mgr.Roles,
	}
	return claims
}

func authenticate(ctx echo.Context, email, pwd string, svc *manager.Service) (*Claims, error) {
	mgr, err := svc.GetByEmail(ctx.Request().Context(), email)
	if err != nil {
		if err == manager.ErrNotFound {
			return nil, errAuthenticationFailed
		}
		return nil, errors.Wrap(err, "finding manager by email")
	}
	if err = mgr.CheckPassword(pwd); err != nil {
		return nil, errAuthenticationFailed
	}
	if mgr.IsActive != nil && !*mgr.IsActive {
		return nil, errAccountDeactivated
	}
	mgr, err = svc.SetLastLogin(ctx.Request().Context(), mgr)
	if err != nil {
		return nil, errors.Wrap(err, "setting lastLogin")
	}
	return GetManagerClaims(mgr), nil
}

// GenerateToken generates a signed JWT token string representing the manager Claims.
func GenerateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(appJWTConfig.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(appJWTConfig.SigningKey)
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(appJWTConfig.ContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func getContextManager(ctx echo.Context, svc *manager.Service, clms ...Claims) (manager.Manager, error) {
	if mgr, ok := ctx.Get(contextManagerKey).(manager.Manager); ok {
		return mgr, nil
	}

	var claims Claims
	var err error
	if len(clms) > 0 {
		claims = clms[0]
	} else {
		claims, err = getContextClaims(ctx)
		if err != nil {
			return manager.Manager{}, errors.Wrap(err, "getting context claims")
		}
	}

	mgr, err := svc.GetByID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return manager.Manager{}, errors.Wrap(err, "finding manager by ID")
	}
	ctx.Set(contextManagerKey, mgr)
	return mgr, nil
}

func contextHasAnyRole(ctx echo.Context, roles []string) bool {
	if len(roles) == 0 {
		return true
	}
	if claims, err := getContextClaims(ctx); err == nil {
		sort.Strings(claims.Roles)
		for _, role := range roles {
			if i := sort.SearchStrings(claims.Roles, role); i < len(claims.Roles) {
				if match := claims.Roles[i]; role == match {
					return true
				}
			}
		}
	}
	return false
}

func refreshToken(ctx echo.Context, svc *manager.Service) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context claims")
	}

	mgr, err := getContextManager(ctx, svc, claims)
	if err != nil {
		return "", errors.Wrap(err, "getting context manager")
	}

	// check if manager is still active
	if mgr.IsActive != nil && !*mgr.IsActive {
		return "", errAccountDeactivated
	}

	// check if refresh has not expired
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(authConf.Server.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return "", errRefreshExpired
	}

	newClaims := GetManagerClaims(mgr, claims.OrigIssuedAt)
	token, err := GenerateToken(newClaims)
	return token, errors.Wrap(err, "generating token")
}
