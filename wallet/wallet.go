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

// Package wallet implements the RSA keypair used to sign and verify
// transactions. An address is the base64 encoding of the DER form of the
// public key, so the address alone suffices to verify signatures made by
// its holder.
package wallet

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"

	"github.com/xugenping/go-xgp/blockchain/types"
	"github.com/xugenping/go-xgp/common"
	"github.com/xugenping/go-xgp/log"
)

var logger = log.NewModuleLogger(log.Wallet)

var (
	ErrInvalidPublicKey = errors.New("address does not decode to an RSA public key")
	ErrBadSignature     = errors.New("signature verification failed")
	ErrMalformedKeyfile = errors.New("malformed wallet keyfile")
)

const keyBits = 2048

// Wallet holds an RSA keypair and the address derived from it.
type Wallet struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	address    string
}

// New generates a fresh keypair.
func New() (*Wallet, error) {
	priv, err := rsa.GenerateKey(rand.Reader, keyBits)
	if err != nil {
		return nil, err
	}
	w := &Wallet{privateKey: priv, publicKey: &priv.PublicKey}
	w.address, err = encodeAddress(w.publicKey)
	if err != nil {
		return nil, err
	}
	logger.Info("Generated wallet", "address", short(w.address))
	return w, nil
}

// Address returns the wallet's address.
func (w *Wallet) Address() string {
	return w.address
}

func encodeAddress(pub *rsa.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(der), nil
}

func decodeAddress(address string) (*rsa.PublicKey, error) {
	der, err := base64.StdEncoding.DecodeString(address)
	if err != nil {
		return nil, ErrInvalidPublicKey
	}
	key, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, ErrInvalidPublicKey
	}
	pub, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, ErrInvalidPublicKey
	}
	return pub, nil
}

// SignTransaction signs the canonical form of the transaction, without
// its signature field, and returns the base64 signature.
func (w *Wallet) SignTransaction(tx *types.Transaction) (string, error) {
	digest, err := signingDigest(tx)
	if err != nil {
		return "", err
	}
	sig, err := rsa.SignPKCS1v15(rand.Reader, w.privateKey, crypto.SHA256, digest)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}

// VerifyTransaction checks a transaction's signature against the given
// base64-encoded public key.
func VerifyTransaction(tx *types.Transaction, publicKey string) error {
	pub, err := decodeAddress(publicKey)
	if err != nil {
		return err
	}
	sig, err := base64.StdEncoding.DecodeString(tx.Signature)
	if err != nil {
		return ErrBadSignature
	}
	digest, err := signingDigest(tx)
	if err != nil {
		return err
	}
	if err := rsa.VerifyPKCS1v15(pub, crypto.SHA256, digest, sig); err != nil {
		return ErrBadSignature
	}
	return nil
}

func signingDigest(tx *types.Transaction) ([]byte, error) {
	enc, err := common.CanonicalJSON(tx.SigningContent())
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(enc)
	return sum[:], nil
}

// keyfile is the persisted wallet form.
type keyfile struct {
	Address    string `json:"address"`
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key"`
}

// MarshalJSON serializes the wallet with PEM-encoded keys.
func (w *Wallet) MarshalJSON() ([]byte, error) {
	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(w.privateKey),
	})
	pubDER, err := x509.MarshalPKIXPublicKey(w.publicKey)
	if err != nil {
		return nil, err
	}
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})
	return json.Marshal(&keyfile{
		Address:    w.address,
		PublicKey:  string(pubPEM),
		PrivateKey: string(privPEM),
	})
}

// UnmarshalJSON restores a wallet from its persisted form.
func (w *Wallet) UnmarshalJSON(data []byte) error {
	var kf keyfile
	if err := json.Unmarshal(data, &kf); err != nil {
		return err
	}
	block, _ := pem.Decode([]byte(kf.PrivateKey))
	if block == nil {
		return ErrMalformedKeyfile
	}
	priv, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return ErrMalformedKeyfile
	}
	w.privateKey = priv
	w.publicKey = &priv.PublicKey
	w.address = kf.Address
	if w.address == "" {
		if w.address, err = encodeAddress(w.publicKey); err != nil {
			return err
		}
	}
	return nil
}

func short(address string) string {
	if len(address) > 12 {
		return address[:12] + "..."
	}
	return address
}
