// Package chat is the Twitch chat frontend.
//
// It provides two entrypoints:
//   - StartTwitchChatBot: connects to Twitch IRC for TWITCH_CHANNEL and hands every
//     chat message to the command dispatcher. Replies are rendered as a single chat
//     line, since IRC has no embeds.
//   - Announcer: polls the stream-info API for the same channel and posts the live
//     line once when the channel goes live. Enabled by CHAT_AUTO_POLL_INTERVAL.
//
// Credentials: the IRC client requires a bot username and an OAuth token with
// chat:read/chat:edit scopes. A token without the "oauth:" prefix gets one.
package chat
