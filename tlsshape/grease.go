package tlsshape

import "math/rand/v2"

// resolveAesHwPreference decides, for one dial, whether AES-GCM ciphers
// should be preferred over ChaCha20-Poly1305 in the emitted cipher list.
// AesHwOverride forces the choice; RandomAesHwOverride randomizes it per
// dial (defeating passive JA3 clustering on the AES-preference signal,
// per spec.md §4.1); otherwise PreferChacha20 decides directly.
func resolveAesHwPreference(opts *TlsOptions) bool {
	if opts.RandomAesHwOverride {
		return rand.IntN(2) == 0
	}
	if v, ok := opts.AesHwOverride.Bool(); ok {
		return v
	}
	return !opts.PreferChacha20
}

// resolvePermuteExtensions decides, for one dial, whether the built
// extension list should be shuffled after assembly. PermuteExtensions
// unset means no shuffle, the same as TriFalse, so an explicit
// ExtensionPermutation is emitted in exactly its configured order.
func resolvePermuteExtensions(opts *TlsOptions) bool {
	if v, ok := opts.PermuteExtensions.Bool(); ok {
		return v
	}
	return false
}
