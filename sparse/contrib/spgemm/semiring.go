// Copyright 2025 go-sparse Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package spgemm

import (
	"math"

	"github.com/go-sparse/spgemm/sparse"
)

// Semiring is the caller-supplied arithmetic of a multiplication.
//
// Multiply forms the product of an entry of A and an entry of B. When it
// reports annihilated, the product is the semiring's multiplicative
// annihilator and is dropped instead of being stored.
//
// Add accumulates two products landing on the same output position. It must
// be associative and commutative; the kernel makes no attempt to detect
// violations.
type Semiring[A, B, C any] struct {
	Multiply func(a A, b B) (c C, annihilated bool)
	Add      func(x, y C) C
}

// PlusTimes is ordinary arithmetic. Zero products are dropped.
func PlusTimes[T sparse.Number]() Semiring[T, T, T] {
	return Semiring[T, T, T]{
		Multiply: func(a, b T) (T, bool) {
			c := a * b
			return c, c == 0
		},
		Add: func(x, y T) T { return x + y },
	}
}

// Boolean is the (OR, AND) semiring used for reachability. False products
// are dropped, so the output never holds an explicit false.
func Boolean() Semiring[bool, bool, bool] {
	return Semiring[bool, bool, bool]{
		Multiply: func(a, b bool) (bool, bool) {
			c := a && b
			return c, !c
		},
		Add: func(x, y bool) bool { return x || y },
	}
}

// MinPlus is the tropical semiring used for shortest paths. Products equal
// to +Inf are dropped; integer products are always kept.
func MinPlus[T sparse.Number]() Semiring[T, T, T] {
	return Semiring[T, T, T]{
		Multiply: func(a, b T) (T, bool) {
			c := a + b
			return c, math.IsInf(float64(c), 1)
		},
		Add: func(x, y T) T { return min(x, y) },
	}
}

// MaxTimes keeps the strongest product. Zero products are dropped, so it
// is only a semiring over nonnegative values: with negative entries a zero
// product could win the max and dropping it changes the result.
func MaxTimes[T sparse.Number]() Semiring[T, T, T] {
	return Semiring[T, T, T]{
		Multiply: func(a, b T) (T, bool) {
			c := a * b
			return c, c == 0
		},
		Add: func(x, y T) T { return max(x, y) },
	}
}

// SelectSecondMax passes the value of B through and keeps the largest one.
// It is the semiring of BFS-style parent selection; nothing is dropped.
func SelectSecondMax[A any, T sparse.Number]() Semiring[A, T, T] {
	return Semiring[A, T, T]{
		Multiply: func(_ A, b T) (T, bool) { return b, false },
		Add:      func(x, y T) T { return max(x, y) },
	}
}
