package fiscal

import (
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	modelNFCe      = "65"
	emissionNormal = "1"
)

// AccessKey builds the 44-digit chave de acesso:
// cUF(2) AAMM(4) CNPJ(14) mod(2) serie(3) nNF(9) tpEmis(1) cNF(8) cDV(1).
// cNF is derived from the sale id so the same sale always gets the same key.
func AccessKey(stateCode, cnpj string, emitted time.Time, series int, number int64, saleID uuid.UUID) string {
	h := fnv.New32a()
	_, _ = h.Write(saleID[:])
	cnf := h.Sum32() % 100000000

	body := fmt.Sprintf("%s%s%s%s%03d%09d%s%08d",
		zeroPad(onlyDigits(stateCode), 2),
		emitted.Format("0601"),
		zeroPad(onlyDigits(cnpj), 14),
		modelNFCe,
		series%1000,
		number%1000000000,
		emissionNormal,
		cnf,
	)
	return body + fmt.Sprint(checkDigit(body))
}

// checkDigit is the modulo-11 digit with weights 2..9 from the right.
func checkDigit(digits string) int {
	sum, weight := 0, 2
	for i := len(digits) - 1; i >= 0; i-- {
		sum += int(digits[i]-'0') * weight
		weight++
		if weight > 9 {
			weight = 2
		}
	}
	r := sum % 11
	if r < 2 {
		return 0
	}
	return 11 - r
}

// ValidAccessKey reports whether key has 44 digits and a matching check digit.
func ValidAccessKey(key string) bool {
	if len(key) != 44 || onlyDigits(key) != key {
		return false
	}
	return int(key[43]-'0') == checkDigit(key[:43])
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func zeroPad(s string, n int) string {
	if len(s) >= n {
		return s[len(s)-n:]
	}
	return strings.Repeat("0", n-len(s)) + s
}
