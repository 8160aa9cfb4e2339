// Command shellbeats is a terminal music player for YouTube audio.
// Run without arguments it opens the full-screen interface; subcommands
// expose search, playlist management, and queue inspection for
// scripting.
package main
