package detector

// Outcome tags a detection Result.
type Outcome int

const (
	// ThemeFound means the marker script carried a decodable payload.
	ThemeFound Outcome = iota
	// NotFound means no marker script or no payload assignment was present.
	// It is a valid negative answer, not a failure.
	NotFound
	// FetchError means the page could not be retrieved.
	FetchError
	// ParseError means a payload was found but is not valid JSON.
	ParseError
)

// MissingName is substituted when the payload has no "name" field.
const MissingName = "Theme name not found in script"

// User-facing messages rendered by Result.Message.
const (
	msgFound      = "The theme is: "
	msgNotFound   = "Could not find a Shopify theme. The store might be using a custom or heavily modified theme."
	msgFetchError = "Error: Could not fetch the URL. Please check if it's correct and publicly accessible."
	msgParseError = "Error: Could not decode theme data."
)

func (o Outcome) String() string {
	switch o {
	case ThemeFound:
		return "theme_found"
	case NotFound:
		return "not_found"
	case FetchError:
		return "fetch_error"
	case ParseError:
		return "parse_error"
	default:
		return "unknown"
	}
}

// Result is the outcome of one detection attempt.
type Result struct {
	Outcome Outcome

	// ThemeName is set only when Outcome is ThemeFound.
	ThemeName string

	// Err holds the underlying cause for FetchError and ParseError. It is
	// for logging only and never changes Message.
	Err error
}

// Message renders the result as the single human-readable string returned
// to API callers.
func (r Result) Message() string {
	switch r.Outcome {
	case ThemeFound:
		return msgFound + r.ThemeName
	case FetchError:
		return msgFetchError
	case ParseError:
		return msgParseError
	default:
		return msgNotFound
	}
}

func found(name string) Result     { return Result{Outcome: ThemeFound, ThemeName: name} }
func notFound() Result             { return Result{Outcome: NotFound} }
func fetchFailed(err error) Result { return Result{Outcome: FetchError, Err: err} }
func parseFailed(err error) Result { return Result{Outcome: ParseError, Err: err} }
