package domain

// Zero overwrites b with zeros so plaintext and key material do not linger in memory.
func Zero(b []byte) {
	clear(b)
}
