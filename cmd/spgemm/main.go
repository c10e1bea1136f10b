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

// Command spgemm multiplies, profiles and clusters sparse matrices stored in
// Matrix Market files.
//
// Usage:
//
//	spgemm multiply A.mtx B.mtx -o C.mtx [--semiring plus-times]
//	spgemm estimate A.mtx B.mtx [--per-column]
//	spgemm mcl graph.mtx -o clusters.txt [--inflation 2]
//
// Every flag can also be set through a SPGEMM_ environment variable (dashes
// become underscores) or a spgemm.yaml file in the working directory.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "spgemm: %v\n", err)
		os.Exit(1)
	}
}
