package user

type Theme string

const (
	LightTheme Theme = "light"
	DarkTheme  Theme = "dark"
)

// Toggled returns the opposite theme.
func (t Theme) Toggled() Theme {
	if t == DarkTheme {
		return LightTheme
	}
	return DarkTheme
}

// Default identity used when the login form is left empty.
const (
	DefaultName  = "ZenUser"
	DefaultEmail = "zenuser@zenzero.io"
)

type User struct {
	Id    int
	Uid   string
	Name  string
	Email string
	// Image is a data URL or an external URL, empty when not set.
	Image string
	Theme Theme
}
