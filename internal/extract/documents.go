package extract

// ValidCPF checks a CPF: 11 digits after stripping punctuation, not a single
// repeated digit, and both mod-11 check digits matching.
func ValidCPF(s string) bool {
	cpf := Digits(s)
	if len(cpf) != 11 || allSameRune(cpf) {
		return false
	}
	d := toInts(cpf)

	sum := 0
	for i := 0; i < 9; i++ {
		sum += d[i] * (10 - i)
	}
	if checkDigit(sum%11) != d[9] {
		return false
	}

	sum = 0
	for i := 0; i < 10; i++ {
		sum += d[i] * (11 - i)
	}
	return checkDigit(sum%11) == d[10]
}

// ValidCNH checks a driver's license number. The second check digit relies on
// Go's truncated remainder: when the discounted sum is negative the remainder
// stays negative and maps to zero. Switching to a floored modulo would reject
// numbers already issued under this rule.
func ValidCNH(s string) bool {
	cnh := Digits(s)
	if len(cnh) != 11 || len(cnh) != len(s) {
		return false
	}
	d := toInts(cnh)

	sum := 0
	for i := 0; i < 9; i++ {
		sum += d[i] * (9 - i)
	}
	r1 := sum % 11
	dv1 := checkDigit(r1)
	discount := 0
	if r1 < 2 {
		discount = 2
	}

	sum = 0
	for i := 0; i < 9; i++ {
		sum += d[i] * (i + 1)
	}
	dv2 := checkDigit((sum - discount) % 11)

	return d[9] == dv1 && d[10] == dv2
}

// ValidRG accepts 7 to 9 digits once punctuation is removed.
func ValidRG(s string) bool {
	n := len(Digits(s))
	return n >= 7 && n <= 9
}

// FormatCPF renders 11 digits as 000.000.000-00.
func FormatCPF(cpf string) string {
	d := Digits(cpf)
	if len(d) != 11 {
		return d
	}
	return d[0:3] + "." + d[3:6] + "." + d[6:9] + "-" + d[9:]
}

// FormatRG groups the body in thousands and separates the last digit, e.g. 12.345.678-9.
func FormatRG(rg string) string {
	d := Digits(rg)
	if len(d) < 2 {
		return d
	}
	body, dv := d[:len(d)-1], d[len(d)-1:]

	var out []byte
	for i := range body {
		if i > 0 && (len(body)-i)%3 == 0 {
			out = append(out, '.')
		}
		out = append(out, body[i])
	}
	return string(out) + "-" + dv
}

func checkDigit(remainder int) int {
	if remainder < 2 {
		return 0
	}
	return 11 - remainder
}

func toInts(digits string) []int {
	out := make([]int, len(digits))
	for i := range digits {
		out[i] = int(digits[i] - '0')
	}
	return out
}
