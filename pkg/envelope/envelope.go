// Copyright (c) 2025, The mkagent Authors. All rights reserved.
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

// Package envelope implements the legacy check_mk agent encryption format
// (protocol version 03), readable by collectors configured with the same
// pre-shared passphrase.
//
// Layout of a sealed report:
//
//	"03" + 8 x 0x08          version field, PKCS#7 padded to 10 bytes
//	"Salted__"               OpenSSL salt marker
//	AES-256-CBC ciphertext   PKCS#7 padded plaintext
//
// Key and IV are derived with PBKDF2-HMAC-SHA256 over the passphrase using
// the constant salt "Salted__" and 10000 iterations. The format carries no
// integrity tag and identical plaintexts seal to identical ciphertexts; it
// protects against passive observers only.
package envelope

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/pbkdf2"
	"crypto/sha256"

	cnserrors "github.com/bashclub/mkagent/pkg/errors"
)

const (
	// Version is the protocol version written into the header.
	Version = "03"

	// Salt is both the key derivation salt and the header marker.
	Salt = "Salted__"

	// Iterations is the PBKDF2 iteration count.
	Iterations = 10000

	keyLen    = 32
	ivLen     = aes.BlockSize
	headerLen = 10
)

// Header is the fixed prefix of every sealed report.
var Header = append(pad([]byte(Version), headerLen), Salt...)

// Sealer encrypts reports with a key derived once from the passphrase.
type Sealer struct {
	block cipher.Block
	iv    []byte
}

// NewSealer derives key material from passphrase. An empty passphrase is rejected.
func NewSealer(passphrase string) (*Sealer, error) {
	if passphrase == "" {
		return nil, cnserrors.New(cnserrors.ErrCodeInvalidRequest, "encryption passphrase is empty")
	}

	dk, err := pbkdf2.Key(sha256.New, passphrase, []byte(Salt), Iterations, keyLen+ivLen)
	if err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to derive key", err)
	}

	block, err := aes.NewCipher(dk[:keyLen])
	if err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to create cipher", err)
	}

	return &Sealer{block: block, iv: dk[keyLen:]}, nil
}

// Seal returns the sealed form of plaintext.
func (s *Sealer) Seal(plaintext []byte) []byte {
	padded := pad(plaintext, aes.BlockSize)

	out := make([]byte, len(Header)+len(padded))
	copy(out, Header)
	cipher.NewCBCEncrypter(s.block, s.iv).CryptBlocks(out[len(Header):], padded)
	return out
}

// Open reverses Seal.
func (s *Sealer) Open(sealed []byte) ([]byte, error) {
	if !bytes.HasPrefix(sealed, Header) {
		return nil, cnserrors.New(cnserrors.ErrCodeInvalidRequest, "missing envelope header")
	}
	body := sealed[len(Header):]
	if len(body) == 0 || len(body)%aes.BlockSize != 0 {
		return nil, cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest,
			"ciphertext is not a multiple of the block size",
			map[string]any{"length": len(body)})
	}

	plain := make([]byte, len(body))
	cipher.NewCBCDecrypter(s.block, s.iv).CryptBlocks(plain, body)
	return unpad(plain, aes.BlockSize)
}

func pad(b []byte, size int) []byte {
	n := size - len(b)%size
	out := make([]byte, len(b), len(b)+n)
	copy(out, b)
	return append(out, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(b []byte, size int) ([]byte, error) {
	if len(b) == 0 {
		return nil, cnserrors.New(cnserrors.ErrCodeInvalidRequest, "empty plaintext")
	}
	n := int(b[len(b)-1])
	if n == 0 || n > size || n > len(b) {
		return nil, cnserrors.New(cnserrors.ErrCodeInvalidRequest, "invalid padding, wrong passphrase?")
	}
	for _, c := range b[len(b)-n:] {
		if int(c) != n {
			return nil, cnserrors.New(cnserrors.ErrCodeInvalidRequest, "invalid padding, wrong passphrase?")
		}
	}
	return b[:len(b)-n], nil
}
