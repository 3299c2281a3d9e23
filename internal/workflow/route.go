package workflow

import (
	"fmt"
	"net/url"
	"strings"

	"signalgen/internal/services"
	"signalgen/internal/signal"
)

// RouteKind names one of the navigable screens.
type RouteKind string

const (
	RouteStart    RouteKind = "start"
	RouteFamily   RouteKind = "family"
	RouteCategory RouteKind = "category"
	RoutePattern  RouteKind = "pattern"
	RouteResults  RouteKind = "results"
)

// Route is a parsed navigation path. Only the fields its Kind needs are set.
type Route struct {
	Kind      RouteKind
	Family    signal.Family
	Category  signal.Category
	PatternID string
}

const resultsSegment = "results"

// ParseRoute parses `/`, `/{family}`, `/{family}/{category}`,
// `/{family}/{category}/{pattern}` and `/results`. Segments are
// percent-decoded; the family is matched case-insensitively.
func ParseRoute(path string) (Route, error) {
	trimmed := strings.Trim(strings.TrimSpace(path), "/")
	if trimmed == "" {
		return Route{Kind: RouteStart}, nil
	}
	raw := strings.Split(trimmed, "/")
	segments := make([]string, 0, len(raw))
	for _, seg := range raw {
		decoded, err := url.PathUnescape(seg)
		if err != nil || strings.TrimSpace(decoded) == "" {
			return Route{}, invalidRoute(path)
		}
		segments = append(segments, decoded)
	}
	if len(segments) == 1 && segments[0] == resultsSegment {
		return Route{Kind: RouteResults}, nil
	}
	if len(segments) > 3 {
		return Route{}, invalidRoute(path)
	}
	family, err := signal.ParseFamily(segments[0])
	if err != nil {
		return Route{}, invalidRoute(path)
	}
	route := Route{Kind: RouteFamily, Family: family}
	if len(segments) >= 2 {
		route.Kind = RouteCategory
		route.Category = signal.NormalizeCategory(segments[1])
	}
	if len(segments) == 3 {
		route.Kind = RoutePattern
		route.PatternID = segments[2]
	}
	return route, nil
}

// String renders the canonical path for the route.
func (r Route) String() string {
	switch r.Kind {
	case RouteFamily:
		return "/" + string(r.Family)
	case RouteCategory:
		return fmt.Sprintf("/%s/%s", r.Family, url.PathEscape(string(r.Category)))
	case RoutePattern:
		return fmt.Sprintf("/%s/%s/%s", r.Family, url.PathEscape(string(r.Category)), url.PathEscape(r.PatternID))
	case RouteResults:
		return "/" + resultsSegment
	default:
		return "/"
	}
}

func invalidRoute(path string) error {
	return services.Wrap(services.ErrValidation, "workflow", "navigate", fmt.Sprintf("unknown route %q", path), nil)
}
