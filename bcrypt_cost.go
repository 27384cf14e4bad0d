//go:build !race

package flix

func passwordHashCost() int {
	return 14
}
