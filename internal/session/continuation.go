package session

// ContinuationStatus is the third-party login continuation marker. The backend
// sets it during the provider-callback redirect; the client only reads it.
type ContinuationStatus string

const (
	// ContinuationAbsent means no third-party login is in progress.
	ContinuationAbsent ContinuationStatus = ""

	// ContinuationPending means the provider login succeeded server-side but
	// the local registration step has not happened yet. Only the registration
	// route may proceed without a session in this state.
	ContinuationPending ContinuationStatus = "continue"

	// ContinuationLinked means the server already completed account linkage;
	// the next refresh will yield a session.
	ContinuationLinked ContinuationStatus = "success"
)

// FlagProvider reads the ambient continuation flag. It is advisory only: the
// authoritative decision always requires an identity fetch or refresh, the
// flag merely changes which path is attempted first.
type FlagProvider interface {
	Read() ContinuationStatus
}

// MarkerProvider reports whether a refresh credential plausibly exists, from
// the non-sensitive marker cookie. A true result is a hint, not a guarantee.
type MarkerProvider interface {
	RefreshPlausible() bool
}

// JarFlags adapts the cookie jar to FlagProvider.
type JarFlags struct {
	Jar interface{ ContinuationStatus() string }
}

func (f JarFlags) Read() ContinuationStatus {
	switch f.Jar.ContinuationStatus() {
	case string(ContinuationPending):
		return ContinuationPending
	case string(ContinuationLinked):
		return ContinuationLinked
	default:
		return ContinuationAbsent
	}
}
