package stackbt

// Version is the library and CLI version. Release builds override it with
// -ldflags "-X github.com/aretw0/stackbt.Version=...".
var Version = "0.1.0-dev"
