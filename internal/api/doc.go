// Package api provides the client for the IRCC Express Entry rounds feed.
//
// Endpoint:
//   - https://www.canada.ca/content/dam/ircc/documents/json/ee_rounds_123_en.json
//
// The feed is a single JSON document with a "rounds" array. Every value is
// published as a string ("1,510", "2024-01-10"), so rounds are normalized into
// model.Draw at this boundary and nothing downstream sees the source shape.
package api
