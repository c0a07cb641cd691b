package rng

import "fmt"

func errOutOfRange(tid, n int) error {
	return fmt.Errorf("rng: thread id %d out of range [0,%d)", tid, n)
}

func errUnknownDist(d Distribution) error {
	return fmt.Errorf("rng: unknown distribution %v", d)
}
