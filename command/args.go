package command

import (
	"bytes"
	"strings"

	"github.com/matryer/anno"
)

// Detect reports whether text starts with a prefixed command token and returns its
// lower-cased name and the remaining tokens.
func Detect(prefix, text string) (string, []string, bool) {
	text = strings.TrimSpace(text)
	if prefix == "" || !strings.HasPrefix(text, prefix) {
		return "", nil, false
	}
	commands := anno.FieldFunc("command", func(s []byte) (bool, []byte) {
		return bytes.HasPrefix(s, []byte(prefix)), s
	})
	notes, err := anno.FindString(commands, text)
	if err != nil {
		return "", nil, false
	}
	for _, note := range notes {
		if note.Start != 0 {
			continue
		}
		name := strings.ToLower(strings.TrimPrefix(string(note.Val), prefix))
		if name == "" {
			return "", nil, false
		}
		return name, strings.Fields(text)[1:], true
	}
	return "", nil, false
}

// ParseArgs maps tokens onto defs. "--name value" and "--name=value" set a named
// argument; the first bare token fills the DefaultOption argument if it is still unset.
// Unknown flags and extra tokens are ignored.
func ParseArgs(defs []ArgDef, tokens []string) Args {
	args := Args{}
	byName := make(map[string]ArgDef, len(defs))
	var def *ArgDef
	for i := range defs {
		byName[defs[i].Name] = defs[i]
		if defs[i].DefaultOption && def == nil {
			def = &defs[i]
		}
	}
	var bare []string
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if !strings.HasPrefix(tok, "--") {
			bare = append(bare, tok)
			continue
		}
		name, val, hasVal := strings.Cut(tok[2:], "=")
		if !hasVal && i+1 < len(tokens) && !strings.HasPrefix(tokens[i+1], "--") {
			val = tokens[i+1]
			i++
		}
		if d, ok := byName[name]; ok {
			args[d.Name] = val
		}
	}
	if def != nil && args[def.Name] == "" && len(bare) > 0 {
		args[def.Name] = bare[0]
	}
	return args
}
