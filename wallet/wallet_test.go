// Copyright 2019 The go-xgp Authors
// This file is part of the go-xgp library.
//
// The go-xgp library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-xgp library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-xgp library. If not, see <http://www.gnu.org/licenses/>.

package wallet

import (
	"encoding/json"
	"testing"

	"github.com/xugenping/go-xgp/blockchain/types"
)

func TestSignAndVerify(t *testing.T) {
	w, err := New()
	if err != nil {
		t.Fatal(err)
	}

	tx := types.NewTransaction(w.Address(), "bob", 12.5)
	tx.Signature, err = w.SignTransaction(tx)
	if err != nil {
		t.Fatal(err)
	}
	if err := VerifyTransaction(tx, w.Address()); err != nil {
		t.Fatalf("verification failed: %v", err)
	}
}

func TestVerifyRejectsTamperedAmount(t *testing.T) {
	w, err := New()
	if err != nil {
		t.Fatal(err)
	}
	tx := types.NewTransaction(w.Address(), "bob", 12.5)
	tx.Signature, err = w.SignTransaction(tx)
	if err != nil {
		t.Fatal(err)
	}

	tx.Amount = 125
	if err := VerifyTransaction(tx, w.Address()); err != ErrBadSignature {
		t.Fatalf("err = %v, want ErrBadSignature", err)
	}
}

func TestVerifyRejectsForeignKey(t *testing.T) {
	alice, err := New()
	if err != nil {
		t.Fatal(err)
	}
	mallory, err := New()
	if err != nil {
		t.Fatal(err)
	}

	tx := types.NewTransaction(alice.Address(), "bob", 1)
	tx.Signature, err = mallory.SignTransaction(tx)
	if err != nil {
		t.Fatal(err)
	}
	if err := VerifyTransaction(tx, alice.Address()); err != ErrBadSignature {
		t.Fatalf("err = %v, want ErrBadSignature", err)
	}
}

func TestVerifyRejectsBogusAddress(t *testing.T) {
	tx := types.NewTransaction("not-base64!", "bob", 1)
	tx.Signature = "c2ln"
	if err := VerifyTransaction(tx, tx.From); err != ErrInvalidPublicKey {
		t.Fatalf("err = %v, want ErrInvalidPublicKey", err)
	}
}

func TestSignatureIgnoresExistingSignature(t *testing.T) {
	w, err := New()
	if err != nil {
		t.Fatal(err)
	}
	tx := types.NewTransaction(w.Address(), "bob", 3)
	first, err := w.SignTransaction(tx)
	if err != nil {
		t.Fatal(err)
	}
	tx.Signature = first
	second, err := w.SignTransaction(tx)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatal("signing input must exclude the signature field")
	}
}

func TestKeyfileRoundTrip(t *testing.T) {
	w, err := New()
	if err != nil {
		t.Fatal(err)
	}
	enc, err := json.Marshal(w)
	if err != nil {
		t.Fatal(err)
	}

	var restored Wallet
	if err := json.Unmarshal(enc, &restored); err != nil {
		t.Fatal(err)
	}
	if restored.Address() != w.Address() {
		t.Fatal("address did not survive the round trip")
	}

	// The restored key must produce signatures the original address
	// verifies.
	tx := types.NewTransaction(restored.Address(), "bob", 2)
	tx.Signature, err = restored.SignTransaction(tx)
	if err != nil {
		t.Fatal(err)
	}
	if err := VerifyTransaction(tx, w.Address()); err != nil {
		t.Fatalf("restored wallet signature rejected: %v", err)
	}
}
