package domain

// Envelope is the encapsulated ciphertext in flight between workflow
// stages: a KEM ciphertext carrying the symmetric key and the AEAD
// ciphertext sealed under it. Exactly one envelope exists per run;
// GatewayPRE consumes the device envelope and replaces it with a new
// one bound to the cloud party.
type Envelope struct {
	KEMCiphertext []byte
	Nonce         []byte
	Ciphertext    []byte
	Recipient     string
}
