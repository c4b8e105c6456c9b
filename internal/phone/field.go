package phone

// CursorPolicy decides where the edit cursor lands after a reformat.
// prev is the field before the edit, raw is the text the user produced,
// formatted is the new display text. The result is a byte offset into formatted.
type CursorPolicy func(prev Field, raw, formatted string) int

// CursorAtEnd always moves the cursor to the end of the formatted text.
// Mid-string edits therefore lose their position; this matches the observed
// behaviour of the input field and is the default.
func CursorAtEnd(_ Field, _, formatted string) int {
	return len(formatted)
}

// Field is the state of a phone input: displayed text and cursor offset.
type Field struct {
	Text   string
	Cursor int

	// Policy places the cursor after each accepted edit. Nil means CursorAtEnd.
	Policy CursorPolicy
}

// Edit applies a raw edit to the field and returns the new state.
// Edits that would push the number past MaxDigits are rejected and the
// previous state is returned unchanged.
func (f Field) Edit(raw string) Field {
	if !Accepts(raw) {
		return f
	}

	formatted := Format(raw)

	next := Field{Text: formatted, Policy: f.Policy}
	next.Cursor = next.placeCursor(f, raw, formatted)
	return next
}

// Accepts reports whether raw holds at most MaxDigits digits.
func Accepts(raw string) bool {
	return len(Deformat(raw)) <= MaxDigits
}

func (f Field) placeCursor(prev Field, raw, formatted string) int {
	policy := f.Policy
	if policy == nil {
		policy = CursorAtEnd
	}

	c := policy(prev, raw, formatted)
	if c < 0 {
		return 0
	}
	if c > len(formatted) {
		return len(formatted)
	}
	return c
}

// Digits returns the canonical digit string behind the displayed text.
func (f Field) Digits() string {
	return Deformat(f.Text)
}

// Valid reports whether the field holds a complete number.
func (f Field) Valid() bool {
	return IsValid(f.Text)
}

// ShowError reports whether the field should be flagged to the user:
// something has been typed but it is not a complete number yet.
func (f Field) ShowError() bool {
	return f.Text != "" && !f.Valid()
}
