// PowerSNMPQuery - SNMP query engine for Go
// Автор: Волков Олег, ООО "Пауэр Си"
// Author: Volkov Oleg, PowerC LLC
// License: MIT (commercial version with support available)
// Лицензия: MIT (доступна коммерческая версия с поддержкой)
package PowerSNMPQuery

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/des"
	"encoding/binary"
	"errors"
	"fmt"
)

// PrivProtocol is a USM privacy cipher.
//
// Encrypt returns msgPrivacyParameters and the ciphertext of a serialized
// ScopedPDU. salt is the per-message counter kept by the session. Decrypt
// reverses it using the received privacy parameters.
type PrivProtocol interface {
	Code() int
	Name() string
	// KeyLen is the number of localized key octets the cipher consumes.
	KeyLen() int
	Encrypt(key []byte, boots, engineTime int32, salt uint64, plain []byte) (privParams []byte, data []byte, err error)
	Decrypt(key []byte, boots, engineTime int32, privParams []byte, data []byte) ([]byte, error)
}

// fPKCS5Padding pads to the cipher block size. Block-aligned input is left
// untouched.
func fPKCS5Padding(src []byte, blockSize int) ([]byte, error) {
	if len(src) == 0 {
		return nil, errors.New("Zero data length")
	}
	if len(src)%blockSize == 0 {
		return src, nil
	}
	padding := blockSize - len(src)%blockSize
	out := make([]byte, len(src), len(src)+padding)
	copy(out, src)
	return append(out, bytes.Repeat([]byte{byte(padding)}, padding)...), nil
}

// desPriv implements CBC-DES (RFC 3414 §8).
//
// The 16-octet localized key is split into the DES key (first 8) and the
// pre-IV (last 8). The salt is boots|counter and IV = preIV XOR salt.
type desPriv struct{}

func (desPriv) Code() int    { return PRIV_PROTOCOL_DES }
func (desPriv) Name() string { return "DES" }
func (desPriv) KeyLen() int  { return 16 }

func (desPriv) iv(key []byte, salt []byte) ([]byte, error) {
	if len(key) < 16 {
		return nil, errors.New("Localized key for DES, must be 16 or more bytes")
	}
	if len(salt) != 8 {
		return nil, fmt.Errorf("DES privacy parameters length %d, must be 8", len(salt))
	}
	iv := make([]byte, 8)
	for i := 0; i < 8; i++ {
		iv[i] = key[8+i] ^ salt[i]
	}
	return iv, nil
}

func (p desPriv) Encrypt(key []byte, boots, _ int32, salt uint64, plain []byte) ([]byte, []byte, error) {
	privParams := make([]byte, 8)
	binary.BigEndian.PutUint32(privParams[:4], uint32(boots))
	binary.BigEndian.PutUint32(privParams[4:], uint32(salt))
	iv, err := p.iv(key, privParams)
	if err != nil {
		return nil, nil, err
	}
	block, err := des.NewCipher(key[:8])
	if err != nil {
		return nil, nil, err
	}
	padded, err := fPKCS5Padding(plain, block.BlockSize())
	if err != nil {
		return nil, nil, err
	}
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)
	return privParams, out, nil
}

func (p desPriv) Decrypt(key []byte, _, _ int32, privParams []byte, data []byte) ([]byte, error) {
	iv, err := p.iv(key, privParams)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 || len(data)%des.BlockSize != 0 {
		return nil, errors.New("DES ciphertext is not block aligned")
	}
	block, err := des.NewCipher(key[:8])
	if err != nil {
		return nil, err
	}
	// Паддинг не снимаем: ScopedPDU разбирается по собственной длине BER
	out := make([]byte, len(data))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, data)
	return out, nil
}

// aesPriv implements AES-CFB128 (RFC 3826) for 128, 192 and 256 bit keys.
// IV = boots | time | 64-bit salt, the salt travels as privacy parameters.
type aesPriv struct {
	code   int
	keyLen int
}

func (p aesPriv) Code() int    { return p.code }
func (p aesPriv) Name() string { return fmt.Sprintf("AES%d", p.keyLen*8) }
func (p aesPriv) KeyLen() int  { return p.keyLen }

func aesIV(boots, engineTime int32, privParams []byte) ([]byte, error) {
	if len(privParams) != 8 {
		return nil, errors.New("security Parameter length != 8 - must be 8 for AES")
	}
	iv := make([]byte, 16)
	binary.BigEndian.PutUint32(iv[:4], uint32(boots))
	binary.BigEndian.PutUint32(iv[4:8], uint32(engineTime))
	copy(iv[8:], privParams)
	return iv, nil
}

func (p aesPriv) xorStream(key []byte, iv []byte, src []byte, encrypt bool) ([]byte, error) {
	if len(src) == 0 {
		return nil, errors.New("Source data length error")
	}
	if len(key) < p.keyLen {
		return nil, fmt.Errorf("%s needs %d key octets, got %d", p.Name(), p.keyLen, len(key))
	}
	block, err := aes.NewCipher(key[:p.keyLen])
	if err != nil {
		return nil, err
	}
	dst := make([]byte, len(src))
	if encrypt {
		cipher.NewCFBEncrypter(block, iv).XORKeyStream(dst, src)
	} else {
		cipher.NewCFBDecrypter(block, iv).XORKeyStream(dst, src)
	}
	return dst, nil
}

func (p aesPriv) Encrypt(key []byte, boots, engineTime int32, salt uint64, plain []byte) ([]byte, []byte, error) {
	privParams := make([]byte, 8)
	binary.BigEndian.PutUint64(privParams, salt)
	iv, err := aesIV(boots, engineTime, privParams)
	if err != nil {
		return nil, nil, err
	}
	out, err := p.xorStream(key, iv, plain, true)
	if err != nil {
		return nil, nil, err
	}
	return privParams, out, nil
}

func (p aesPriv) Decrypt(key []byte, boots, engineTime int32, privParams []byte, data []byte) ([]byte, error) {
	iv, err := aesIV(boots, engineTime, privParams)
	if err != nil {
		return nil, err
	}
	return p.xorStream(key, iv, data, false)
}

func defaultPrivProtocols() []PrivProtocol {
	return []PrivProtocol{
		desPriv{},
		aesPriv{code: PRIV_PROTOCOL_AES128, keyLen: 16},
		aesPriv{code: PRIV_PROTOCOL_AES192, keyLen: 24},
		aesPriv{code: PRIV_PROTOCOL_AES256, keyLen: 32},
	}
}
