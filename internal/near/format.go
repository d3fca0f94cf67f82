package near

import (
	"fmt"
	"strings"
)

// NominationExp is the number of decimal digits in one NEAR expressed in
// yoctoNEAR.
const NominationExp = 24

// FormatNearAmount converts a raw yoctoNEAR decimal string into a
// human-readable NEAR amount with at most fracDigits fraction digits.
// Amounts stay in decimal string space the whole way; no floats.
func FormatNearAmount(yocto string, fracDigits int) (string, error) {
	if yocto == "" {
		return "", fmt.Errorf("empty amount")
	}
	if !isDigits(yocto) {
		return "", fmt.Errorf("invalid yocto amount %q", yocto)
	}

	padded := yocto
	if len(padded) < NominationExp+1 {
		padded = strings.Repeat("0", NominationExp+1-len(padded)) + padded
	}

	whole := padded[:len(padded)-NominationExp]
	fraction := padded[len(padded)-NominationExp:]
	if fracDigits >= 0 && fracDigits < len(fraction) {
		fraction = fraction[:fracDigits]
	}
	fraction = strings.TrimRight(fraction, "0")
	whole = strings.TrimLeft(whole, "0")
	if whole == "" {
		whole = "0"
	}

	whole = withCommas(whole)
	if fraction == "" {
		return whole, nil
	}
	return whole + "." + fraction, nil
}

// ParseNearAmount converts a human-entered NEAR amount into a raw yoctoNEAR
// decimal string.
func ParseNearAmount(amount string) (string, error) {
	amount = strings.ReplaceAll(strings.TrimSpace(amount), ",", "")
	if amount == "" {
		return "", fmt.Errorf("empty amount")
	}

	parts := strings.Split(amount, ".")
	if len(parts) > 2 {
		return "", fmt.Errorf("cannot parse %q as NEAR amount", amount)
	}

	whole := parts[0]
	fraction := ""
	if len(parts) == 2 {
		fraction = parts[1]
	}
	if whole == "" {
		whole = "0"
	}
	if !isDigits(whole) || (fraction != "" && !isDigits(fraction)) {
		return "", fmt.Errorf("cannot parse %q as NEAR amount", amount)
	}
	if len(fraction) > NominationExp {
		return "", fmt.Errorf("cannot parse %q: too many fraction digits", amount)
	}

	fraction += strings.Repeat("0", NominationExp-len(fraction))
	yocto := strings.TrimLeft(whole+fraction, "0")
	if yocto == "" {
		yocto = "0"
	}
	return yocto, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func withCommas(s string) string {
	var b strings.Builder
	n := len(s)
	for i, r := range s {
		if i > 0 && (n-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}
