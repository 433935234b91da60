package command

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/klokku/klokku-calendar/pkg/event"
)

// cursor walks the tokens of one command line. Every failure is a *ParseError for that line.
type cursor struct {
	line   string
	tokens []string
	pos    int
}

func (c *cursor) fail(format string, args ...any) error {
	return &ParseError{Line: c.line, Reason: fmt.Sprintf(format, args...)}
}

func (c *cursor) more() bool {
	return c.pos < len(c.tokens)
}

// peek reports whether the next token is keyword, ignoring case.
func (c *cursor) peek(keyword string) bool {
	return c.more() && strings.EqualFold(c.tokens[c.pos], keyword)
}

// accept consumes keyword if it is next.
func (c *cursor) accept(keyword string) bool {
	if c.peek(keyword) {
		c.pos++
		return true
	}
	return false
}

func (c *cursor) expect(keyword string) error {
	if !c.more() {
		return c.fail("expected %q at the end", keyword)
	}
	if !c.accept(keyword) {
		return c.fail("expected %q but found %q", keyword, c.tokens[c.pos])
	}
	return nil
}

// value consumes the next token, which is named what in errors.
func (c *cursor) value(what string) (string, error) {
	if !c.more() {
		return "", c.fail("missing %s", what)
	}
	v := c.tokens[c.pos]
	c.pos++
	return v, nil
}

// keywordValue reads `keyword <value>`.
func (c *cursor) keywordValue(keyword, what string) (string, error) {
	if err := c.expect(keyword); err != nil {
		return "", err
	}
	return c.value(what)
}

func (c *cursor) end() error {
	if c.more() {
		return c.fail("unexpected %q", strings.Join(c.tokens[c.pos:], " "))
	}
	return nil
}

func (c *cursor) dateTime(what string, loc *time.Location) (time.Time, error) {
	s, err := c.dateTimeToken(what)
	if err != nil {
		return time.Time{}, err
	}
	return time.ParseInLocation(event.DateTimeLayout, s, loc)
}

// dateTimeToken checks the format only, for values whose location is resolved later.
func (c *cursor) dateTimeToken(what string) (string, error) {
	s, err := c.value(what)
	if err != nil {
		return "", err
	}
	if _, err := time.Parse(event.DateTimeLayout, s); err != nil {
		return "", c.fail("%s %q does not match yyyy-MM-ddTHH:mm", what, s)
	}
	return s, nil
}

func (c *cursor) date(what string, loc *time.Location) (time.Time, error) {
	s, err := c.dateToken(what)
	if err != nil {
		return time.Time{}, err
	}
	return time.ParseInLocation(event.DateLayout, s, loc)
}

func (c *cursor) dateToken(what string) (string, error) {
	s, err := c.value(what)
	if err != nil {
		return "", err
	}
	if _, err := time.Parse(event.DateLayout, s); err != nil {
		return "", c.fail("%s %q does not match yyyy-MM-dd", what, s)
	}
	return s, nil
}

func (c *cursor) until(loc *time.Location) (time.Time, error) {
	s, err := c.value("until date")
	if err != nil {
		return time.Time{}, err
	}
	t, err := event.ParseUntil(s, loc)
	if err != nil {
		return time.Time{}, c.fail("until %q is neither yyyy-MM-dd nor yyyy-MM-ddTHH:mm", s)
	}
	return t, nil
}

func (c *cursor) number(what string) (int, error) {
	s, err := c.value(what)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, c.fail("%s %q is not a number", what, s)
	}
	return n, nil
}
