// Package llm talks to generative model providers to classify waste, answer
// text searches, build quizzes and continue item chats. It supports Gemini,
// OpenAI and Anthropic, with response caching and client side rate limiting.
package llm
