package middleware

import (
	"net"
	"net/http"
	"strings"

	"jobdeck/config"
	deliverycontext "jobdeck/internal/delivery/context"
	domainerrors "jobdeck/internal/domain/errors"
	"jobdeck/internal/usecase"

	"github.com/labstack/echo/v4"
)

// HeaderBreakGlassToken carries a raw break-glass token on privileged writes.
const HeaderBreakGlassToken = "X-Break-Glass-Token"

// AdminMiddleware is the safety gate in front of privileged routes: client
// address allowlisting, read-only enforcement, and break-glass handling.
type AdminMiddleware struct {
	allowlist     []*net.IPNet
	readOnlyStore usecase.ReadOnlyStore
	breakGlassUC  usecase.BreakGlassUsecase
}

// NewAdminMiddleware is the constructor for AdminMiddleware.
func NewAdminMiddleware(cfg *config.Config, readOnlyStore usecase.ReadOnlyStore, breakGlassUC usecase.BreakGlassUsecase) *AdminMiddleware {
	return &AdminMiddleware{
		allowlist:     parseCIDRs(cfg.Admin.IPAllowlist),
		readOnlyStore: readOnlyStore,
		breakGlassUC:  breakGlassUC,
	}
}

// TrustedProxies configures Echo's IP extractor to honor forwarding headers
// only when the direct connection comes from a trusted proxy. Without this,
// the allowlist would compare against the proxy's address, and with a naive
// extractor a client could spoof X-Forwarded-For to walk through the gate.
func TrustedProxies(e *echo.Echo, trustedCIDRs []string) {
	e.IPExtractor = buildIPExtractor(parseCIDRs(trustedCIDRs))
}

// RequireAllowedIP rejects privileged requests from addresses outside the
// configured allowlist. An empty allowlist disables the check.
func (m *AdminMiddleware) RequireAllowedIP(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		clientIP := c.RealIP()

		ctx := deliverycontext.WithClientIP(c.Request().Context(), clientIP)
		c.SetRequest(c.Request().WithContext(ctx))

		if len(m.allowlist) == 0 {
			return next(c)
		}

		parsed := net.ParseIP(clientIP)
		if parsed == nil || !ipInNets(parsed, m.allowlist) {
			return domainerrors.ErrIPNotAllowed
		}

		return next(c)
	}
}

// BreakGlass handles an X-Break-Glass-Token header on privileged writes. A
// presented token is always validated and, after the write succeeds, stamped
// into the audit trail with its mint reason, whether or not read-only mode is
// on. An invalid token fails the request instead of being ignored. Requests
// without the header pass through untouched.
func (m *AdminMiddleware) BreakGlass(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		rawToken := c.Request().Header.Get(HeaderBreakGlassToken)
		if rawToken == "" || !isMutating(c.Request().Method) {
			return next(c)
		}

		ctx := c.Request().Context()

		token, err := m.breakGlassUC.Validate(ctx, rawToken)
		if err != nil {
			return err
		}

		// A break-glass token only unlocks its own organization.
		if principal := deliverycontext.GetPrincipal(ctx); principal != nil && principal.OrgID != token.OrgID {
			return domainerrors.ErrOrgMismatch
		}

		grant := &deliverycontext.BreakGlassGrant{
			TokenHash: token.TokenHash,
			Reason:    token.Reason,
		}
		ctx = deliverycontext.WithBreakGlass(ctx, grant)
		c.SetRequest(c.Request().WithContext(ctx))

		if err := next(c); err != nil {
			return err
		}

		action := c.Request().Method + " " + c.Path()

		return m.breakGlassUC.RecordUse(
			ctx,
			token,
			action,
			deliverycontext.GetRequestIDFromContext(ctx),
			deliverycontext.GetClientIP(ctx),
		)
	}
}

// EnforceReadOnly rejects mutations while the read-only flag is set, unless
// BreakGlass already attached a grant to the request context.
func (m *AdminMiddleware) EnforceReadOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !m.readOnlyStore.Enabled() || !isMutating(c.Request().Method) {
			return next(c)
		}

		if deliverycontext.GetBreakGlass(c.Request().Context()) == nil {
			return domainerrors.ErrReadOnlyMode
		}

		return next(c)
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	default:
		return true
	}
}

func parseCIDRs(cidrs []string) []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, cidr := range cidrs {
		_, network, err := net.ParseCIDR(strings.TrimSpace(cidr))
		if err != nil {
			continue
		}
		nets = append(nets, network)
	}

	return nets
}

func ipInNets(ip net.IP, nets []*net.IPNet) bool {
	for _, network := range nets {
		if network.Contains(ip) {
			return true
		}
	}

	return false
}

// buildIPExtractor trusts X-Real-IP and X-Forwarded-For only when the peer
// address is inside a trusted proxy range.
func buildIPExtractor(trusted []*net.IPNet) echo.IPExtractor {
	return func(req *http.Request) string {
		directIP := extractDirectIP(req.RemoteAddr)

		parsed := net.ParseIP(directIP)
		if parsed == nil || !ipInNets(parsed, trusted) {
			return directIP
		}

		if realIP := req.Header.Get("X-Real-IP"); realIP != "" {
			return strings.TrimSpace(realIP)
		}

		if xff := req.Header.Get("X-Forwarded-For"); xff != "" {
			// Leftmost entry is the original client when every hop is trusted.
			parts := strings.SplitN(xff, ",", 2)
			if len(parts) > 0 {
				return strings.TrimSpace(parts[0])
			}
		}

		return directIP
	}
}

func extractDirectIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}

	return host
}
