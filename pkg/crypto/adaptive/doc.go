// Package adaptive seals small secrets with an AEAD chosen for the host.
//
// AES-256-GCM is used where the CPU accelerates AES, ChaCha20-Poly1305
// elsewhere. Sealed blobs record which cipher produced them, so a blob
// written on one machine opens on another with the same key.
//
// Keys are derived from a passphrase with Argon2id (see DeriveKey).
package adaptive
