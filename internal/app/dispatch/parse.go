package dispatch

import "strings"

// Invocation is a parsed command message.
type Invocation struct {
	// Name is the lower-cased command token without "/" or "@bot".
	Name string
	Args []string
}

// Parse extracts a command from text, which must begin with "/". It reports
// false for plain messages and for commands addressed to a different bot.
// botUsername may be empty, in which case any "@name" suffix is accepted.
func Parse(text, botUsername string) (Invocation, bool) {
	if !strings.HasPrefix(text, "/") {
		return Invocation{}, false
	}

	fields := strings.Fields(text)

	token := strings.TrimPrefix(fields[0], "/")
	if name, target, ok := strings.Cut(token, "@"); ok {
		if botUsername != "" && !strings.EqualFold(target, strings.TrimPrefix(botUsername, "@")) {
			return Invocation{}, false
		}
		token = name
	}
	if token == "" {
		return Invocation{}, false
	}

	return Invocation{
		Name: strings.ToLower(token),
		Args: fields[1:],
	}, true
}
