// Copyright 2025 Zintix Labs
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

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/zintix-labs/smoothlab"
	"github.com/zintix-labs/smoothlab/demo"
	"github.com/zintix-labs/smoothlab/sdk/merge"
	"github.com/zintix-labs/smoothlab/seqfmt"
)

// gen 是最小的序列輸出工具：挑一個 basis（demo catalog 的 name、bound k、
// 或逗號分隔的 primes），印出前 n 項。-o 會改寫成 delta 編碼的 wire 檔。
var (
	basisName = flag.String("basis", "", "registered basis name (demo catalog)")
	bound     = flag.Uint64("k", 0, "ad-hoc bounded basis: primes <= k")
	primeList = flag.String("primes", "", "ad-hoc explicit basis, comma separated")
	n         = flag.Int("n", 20, "number of terms")
	out       = flag.String("o", "", "write delta-encoded payload to file instead of stdout")
)

func main() {
	flag.Parse()

	res, err := generate()
	if err != nil {
		log.Fatal(err)
	}

	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		if err := seqfmt.WriteTerms(f, res.Terms); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("wrote %d terms to %s\n", len(res.Terms), *out)
		return
	}

	for _, t := range res.Terms {
		fmt.Println(t)
	}
	if res.Truncated() {
		fmt.Fprintf(os.Stderr, "truncated: basis exhausted after %d terms\n", len(res.Terms))
	}
}

func generate() (*merge.Result, error) {
	switch {
	case *basisName != "":
		lab, err := demo.NewLab()
		if err != nil {
			return nil, err
		}
		g, err := lab.NewGeneratorByName(*basisName)
		if err != nil {
			return nil, err
		}
		return g.Generate(*n)

	case *primeList != "":
		var ps []uint64
		for _, s := range strings.Split(*primeList, ",") {
			var p uint64
			if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d", &p); err != nil {
				return nil, fmt.Errorf("invalid prime %q", s)
			}
			ps = append(ps, p)
		}
		return smoothlab.GenerateWithPrimes(ps, *n)

	default:
		return smoothlab.GenerateBounded(*bound, *n)
	}
}
