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

package catalog

import (
	"errors"
	"testing"
	"testing/fstest"
)

func demoFS() fstest.MapFS {
	return fstest.MapFS{
		"pratt.yaml": &fstest.MapFile{Data: []byte(
			"basis_name: pratt\nbasis_id: 3\nkind: bounded\nbound: 3\n")},
		"two-five.json": &fstest.MapFile{Data: []byte(
			`{"basis_name":"two-five","basis_id":25,"kind":"explicit","primes":[5,2]}`)},
	}
}

func TestCatalogRegisterAndLookup(t *testing.T) {
	c, err := New(demoFS())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err = c.Register(
		Entry{BID: 3, Name: "Pratt", ConfigName: "pratt.yaml"},
		Entry{BID: 25, Name: "two-five", ConfigName: "two-five.json"},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := c.IDs(); len(got) != 2 || got[0] != 3 || got[1] != 25 {
		t.Fatalf("unexpected id order: %v", got)
	}

	// name lookup is case/space insensitive
	if _, ok := c.GetByName("  PRATT "); !ok {
		t.Fatalf("name lookup failed")
	}

	bs, err := c.BasisSettingById(25)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bs.Primes) != 2 || bs.Primes[0] != 2 || bs.Primes[1] != 5 {
		t.Fatalf("setting not canonicalized: %v", bs.Primes)
	}
}

func TestCatalogRegisterAtomicity(t *testing.T) {
	c, err := New(demoFS())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err = c.Register(
		Entry{BID: 3, Name: "pratt", ConfigName: "pratt.yaml"},
		Entry{BID: 4, Name: "ghost", ConfigName: "missing.yaml"},
	)
	if err == nil {
		t.Fatalf("expected error for missing config")
	}
	// nothing from the failed batch may land
	if _, ok := c.GetByID(3); ok {
		t.Fatalf("partial registration leaked")
	}
}

func TestCatalogDuplicateDetection(t *testing.T) {
	c, _ := New(demoFS())
	if err := c.Register(Entry{BID: 3, Name: "pratt", ConfigName: "pratt.yaml"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.Register(Entry{BID: 3, Name: "other", ConfigName: "two-five.json"}); !errors.Is(err, ErrDupID) {
		t.Fatalf("expected ErrDupID, got %v", err)
	}
	if err := c.Register(Entry{BID: 9, Name: "pratt", ConfigName: "two-five.json"}); !errors.Is(err, ErrDupName) {
		t.Fatalf("expected ErrDupName, got %v", err)
	}
}

func TestCatalogFreeze(t *testing.T) {
	c, _ := New(demoFS())
	c.Freeze()
	if !c.IsFrozen() {
		t.Fatalf("freeze flag not set")
	}
	if err := c.Register(Entry{BID: 3, Name: "pratt", ConfigName: "pratt.yaml"}); err == nil {
		t.Fatalf("expected error registering into frozen catalog")
	}
}

func TestMultiFSRejectsSubdirsAndDuplicates(t *testing.T) {
	nested := fstest.MapFS{"sub/x.yaml": &fstest.MapFile{Data: []byte("basis_name: x\n")}}
	if _, err := New(nested); err == nil {
		t.Fatalf("expected error for nested config FS")
	}

	a := fstest.MapFS{"same.yaml": &fstest.MapFile{Data: []byte("a")}}
	b := fstest.MapFS{"same.yaml": &fstest.MapFile{Data: []byte("b")}}
	if _, err := New(a, b); err == nil {
		t.Fatalf("expected error for duplicate config across sources")
	}
}
