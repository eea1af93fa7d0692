// PowerSNMPQuery - SNMP query engine for Go
// Автор: Волков Олег, ООО "Пауэр Си"
// Author: Volkov Oleg, PowerC LLC
// License: MIT (commercial version with support available)
// Лицензия: MIT (доступна коммерческая версия с поддержкой)
package PowerSNMPQuery

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"hash"

	ASNber "github.com/OlegPowerC/asn1modsnmp"
)

// AuthProtocol is a USM authentication algorithm (RFC 3414, RFC 7860).
//
// Fields:
//
//	Code      - AUTH_PROTOCOL_* constant
//	Name      - display name (MD5, SHA1, SHA224 ...)
//	New       - hash constructor used for key derivation and HMAC
//	DigestLen - truncated HMAC length carried in msgAuthenticationParameters
type AuthProtocol struct {
	Code      int
	Name      string
	New       func() hash.Hash
	DigestLen int
}

var defaultAuthProtocols = []AuthProtocol{
	{Code: AUTH_PROTOCOL_MD5, Name: "MD5", New: md5.New, DigestLen: 12},
	{Code: AUTH_PROTOCOL_SHA, Name: "SHA1", New: sha1.New, DigestLen: 12},
	{Code: AUTH_PROTOCOL_SHA224, Name: "SHA224", New: sha256.New224, DigestLen: 16},
	{Code: AUTH_PROTOCOL_SHA256, Name: "SHA256", New: sha256.New, DigestLen: 24},
	{Code: AUTH_PROTOCOL_SHA384, Name: "SHA384", New: sha512.New384, DigestLen: 32},
	{Code: AUTH_PROTOCOL_SHA512, Name: "SHA512", New: sha512.New, DigestLen: 48},
}

// PasswordToKey expands a passphrase to 1 MiB and hashes it (RFC 3414 A.2).
//
// Algorithm (1,048,576 bytes processed):
//  1. Repeat the password in 64-byte blocks → hash
//  2. Ku = hash(password×1M)
func (a AuthProtocol) PasswordToKey(password []byte) []byte {
	h := a.New()
	if len(password) == 0 {
		return h.Sum(nil)
	}
	block := make([]byte, 64)
	pwIndex := 0
	for count := 0; count < 1048576; count += 64 {
		for i := range block {
			block[i] = password[pwIndex%len(password)]
			pwIndex++
		}
		h.Write(block)
	}
	return h.Sum(nil)
}

// LocalizeKey binds a master key to an authoritative engine:
// Kul = hash(Ku | EngineID | Ku).
func (a AuthProtocol) LocalizeKey(ku []byte, engineID []byte) []byte {
	h := a.New()
	h.Write(ku)
	h.Write(engineID)
	h.Write(ku)
	return h.Sum(nil)
}

// LocalizedKey is PasswordToKey followed by LocalizeKey.
func (a AuthProtocol) LocalizedKey(password []byte, engineID []byte) []byte {
	return a.LocalizeKey(a.PasswordToKey(password), engineID)
}

// Digest computes the truncated HMAC over a whole message whose
// msgAuthenticationParameters are zero-filled.
func (a AuthProtocol) Digest(msg []byte, localizedKey []byte) []byte {
	mac := hmac.New(a.New, localizedKey)
	mac.Write(msg)
	return mac.Sum(nil)[:a.DigestLen]
}

// verifyDigest checks msgAuthenticationParameters of a raw v3 message.
//
// The parameters are located with ASNber.FindSNMPv3AuthParamsOffset on the
// raw bytes, zero-filled in a copy and the HMAC is recalculated.
func (a AuthProtocol) verifyDigest(packet []byte, localizedKey []byte) (bool, error) {
	offset, aplen, ferr := ASNber.FindSNMPv3AuthParamsOffset(packet)
	if ferr != nil {
		return false, ferr
	}
	if offset == 0 || aplen == 0 || offset+aplen > len(packet) {
		return false, errors.New("AuthParam not found")
	}
	if aplen != a.DigestLen {
		return false, nil
	}
	received := make([]byte, aplen)
	copy(received, packet[offset:offset+aplen])

	DataCopy := make([]byte, len(packet))
	copy(DataCopy, packet)
	for i := 0; i < aplen; i++ {
		DataCopy[offset+i] = 0x00
	}
	return hmac.Equal(a.Digest(DataCopy, localizedKey), received), nil
}

// extendKey lengthens a localized key for ciphers that need more octets than
// the auth hash yields (AES192/AES256 with MD5, SHA1 or SHA224).
//
// The key is extended as draft-blumenthal-aes-usm describes and SNMP4J and
// net-snmp do for AES192/AES256: the hash of all octets built so far is
// appended until keyLen octets are available. The Cisco "AES256C" variant,
// which re-localizes every block, is not supported.
func (a AuthProtocol) extendKey(kul []byte, keyLen int) []byte {
	if len(kul) >= keyLen {
		return kul[:keyLen]
	}
	result := make([]byte, len(kul), keyLen+a.New().Size())
	copy(result, kul)
	for len(result) < keyLen {
		h := a.New()
		h.Write(result)
		result = h.Sum(result)
	}
	return result[:keyLen]
}
