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

// Package spgemm multiplies two sparse matrices held in column-compressed
// stores, C = A*B, using all cores of a single node.
//
// The kernel works column by column on C. For each nonempty column j of B it
//
//  1. estimates the work, flop[j], as the number of scalar products a naive
//     merge would form;
//  2. counts the distinct output rows, nnz[j], with a throwaway hash pass;
//  3. turns nnz into output offsets with a parallel prefix sum, so every
//     column owns a fixed window of one preallocated triple buffer;
//  4. merges the contributing columns of A into that window, with a k-way
//     heap merge when flop[j]/nnz[j] < 2 and with hash accumulation followed
//     by a sort otherwise.
//
// Columns are independent, so steps 1, 2 and 4 run in parallel without locks.
//
// Arithmetic is supplied by the caller as a Semiring: a Multiply that may
// report its product as the annihilator (dropped from the output) and an
// associative, commutative Add.
//
// Example:
//
//	c, err := spgemm.Multiply(ctx, a, b, spgemm.PlusTimes[float64](),
//	    spgemm.WithPool(pool))
//	if err != nil {
//	    return err
//	}
//	for _, t := range c.Entries() {
//	    fmt.Println(t.Row, t.Col, t.Val)
//	}
//
// Within each output column the triples are in ascending row order; columns
// follow the order of B's nonempty columns.
package spgemm
