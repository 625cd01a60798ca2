package cli

// Version is the release version, set with -ldflags "-X ...cli.Version=v1.2.3".
var Version = "0.1.0"
