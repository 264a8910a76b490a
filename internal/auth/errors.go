package auth

// ValidationError is returned when registration input breaks a rule.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok
}

// BadCredentialsError deliberately carries no detail about which part of the
// credentials failed.
type BadCredentialsError struct{}

func (e *BadCredentialsError) Error() string { return "credenciales inválidas" }

func (e *BadCredentialsError) Is(target error) bool {
	_, ok := target.(*BadCredentialsError)
	return ok
}
