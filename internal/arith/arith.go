package arith

import (
	"cmp"
	"strconv"
)

// Max returns a when the arguments are equal.
func Max[T cmp.Ordered](a, b T) T {
	if a >= b {
		return a
	}
	return b
}

func FizzBuzz(n int) string {
	switch {
	case n%3 == 0 && n%5 == 0:
		return "FizzBuzz"
	case n%3 == 0:
		return "Fizz"
	case n%5 == 0:
		return "Buzz"
	}
	return strconv.Itoa(n)
}
