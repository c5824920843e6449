package domhash

// Version is the release of the digest library and its binaries.
const Version = "0.1.0"
