// Package completion synthesizes completion suggestions from cursor context.
//
// Providers receive a validated Request (cursor position, the line text up to
// the cursor and the word before it) and return Suggestions whose replacement
// range covers that word. Two provider flavors exist:
//
//   - ClosingTagProvider proposes the matching closing tag after an opening
//     tag such as <span> is typed.
//   - StaticProvider filters fixed keyword, function and snippet tables by a
//     case-sensitive prefix match on the word before the cursor.
//
// Providers hold no state and never return errors; an unusable context
// yields no suggestions.
package completion
