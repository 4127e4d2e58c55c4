// Package dedupe provides a bounded TTL cache for suppressing duplicate
// chat events. The homeserver replays recent events after a reconnect, and
// answering the same command twice reads as a malfunction to the room.
package dedupe
