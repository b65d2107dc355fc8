package util

func IsNumber(b byte) bool {
	return b >= '0' && b <= '9'
}

func IsUnderScore(b byte) bool {
	return b == '_'
}

func IsLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func IsUpperLetter(b byte) bool {
	return b >= 'A' && b <= 'Z'
}

func IsLetterOrUnderscore(b byte) bool {
	return IsLetter(b) || IsUnderScore(b)
}

func IsLetterOrUnderscoreOrNumber(b byte) bool {
	return IsLetter(b) || IsUnderScore(b) || IsNumber(b)
}

func IsSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

// IsNumeric reports whether s is a non-empty run of decimal digits.
func IsNumeric(s string) bool {
	if len(s) == 0 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !IsNumber(s[i]) {
			return false
		}
	}
	return true
}

// IsHackSymbol reports whether s is a legal assembly symbol: a sequence of letters, digits,
// '_', '.', '$' and ':' that does not begin with a digit. IR labels and function names share
// the same alphabet since they end up as assembly labels.
func IsHackSymbol(s string) bool {
	if len(s) == 0 || IsNumber(s[0]) {
		return false
	}
	for i := 0; i < len(s); i++ {
		b := s[i]
		if !IsLetterOrUnderscoreOrNumber(b) && b != '.' && b != '$' && b != ':' {
			return false
		}
	}
	return true
}
