package literal

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"golang.org/x/exp/constraints"
)

func formatSigned[T constraints.Signed](v T) string {
	return strconv.FormatInt(int64(v), 10)
}

func formatUnsigned[T constraints.Unsigned](v T) string {
	return strconv.FormatUint(uint64(v), 10)
}

// formatFloat renders infinities as INF/-INF as XML Schema requires.
func formatFloat[T constraints.Float](v T, bits int) string {
	f := float64(v)
	switch {
	case math.IsInf(f, 1):
		return "INF"
	case math.IsInf(f, -1):
		return "-INF"
	case math.IsNaN(f):
		return "NaN"
	default:
		return strconv.FormatFloat(f, 'g', -1, bits)
	}
}

func parseFloat(lexical string, bits int) (float64, bool) {
	switch lexical {
	case "INF", "+INF":
		return math.Inf(1), true
	case "-INF":
		return math.Inf(-1), true
	case "NaN":
		return math.NaN(), true
	}
	for _, r := range lexical {
		if !strings.ContainsRune("0123456789+-.eE", r) {
			return 0, false
		}
	}
	f, err := strconv.ParseFloat(lexical, bits)
	if err != nil {
		return 0, false
	}
	return f, true
}

func parseInteger(lexical string) (*big.Int, bool) {
	if lexical == "" || strings.ContainsAny(lexical, "_xXoObB") {
		return nil, false
	}
	return new(big.Int).SetString(lexical, 10)
}

func parseDecimal(lexical string) (*big.Float, bool) {
	if lexical == "" || strings.ContainsAny(lexical, "eEpPxXiInN_") {
		return nil, false
	}
	f, _, err := big.ParseFloat(lexical, 10, 256, big.ToNearestEven)
	if err != nil {
		return nil, false
	}
	return f, true
}

func fitsSigned[T constraints.Signed](n *big.Int) (T, bool) {
	if !n.IsInt64() {
		return 0, false
	}
	v := n.Int64()
	if int64(T(v)) != v {
		return 0, false
	}
	return T(v), true
}

func fitsUnsigned[T constraints.Unsigned](n *big.Int) (T, bool) {
	if n.Sign() < 0 || !n.IsUint64() {
		return 0, false
	}
	v := n.Uint64()
	if uint64(T(v)) != v {
		return 0, false
	}
	return T(v), true
}
