package onboarding

// Stage is the two-step authorization state of a caller: signed in at the
// identity provider, then onboarded inside the application.
type Stage string

const (
	Unauthenticated Stage = "unauthenticated"
	Pending         Stage = "authenticated-onboarding-pending"
	Complete        Stage = "authenticated-complete"
)

func StageOf(signedIn, onboardingComplete bool) Stage {
	switch {
	case !signedIn:
		return Unauthenticated
	case !onboardingComplete:
		return Pending
	default:
		return Complete
	}
}
