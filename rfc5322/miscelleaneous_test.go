package rfc5322

import (
	"testing"

	"github.com/ProtonMail/mailgrammar/rfcparser"
	"github.com/bradenaw/juniper/xslices"
	"github.com/stretchr/testify/require"
)

func TestParseWord(t *testing.T) {
	inputs := map[string]string{
		`"f\".c"`:                   "f\".c",
		"\" \r\n f\\\".c\r\n \"":    "  f\".c ",
		` " foo bar derer " `:       " foo bar derer ",
		`foo`:                       "foo",
		`=?utf-8?q?caf=C3=A9?=`:     "café",
		`=?utf-8?q?not?=anencoding`: "=?utf-8?q?not?=anencoding",
		`=?broken`:                  "=?broken",
	}

	for i, e := range inputs {
		v, _, err := parseWord(newTestCursor(i))
		require.NoError(t, err)
		require.Equal(t, e, v.Value)
	}
}

func TestParseWordEncodingFailure(t *testing.T) {
	_, next, err := parseWord(newTestCursor(`  =?utf-8?b?!!!?= rest`))
	require.Error(t, err)
	require.True(t, rfcparser.Committed(err))
	require.Equal(t, 2, rfcparser.ErrorOffset(err))
	require.Equal(t, 0, next.Offset())
}

func TestParseLocalWordKeepsEncodedWords(t *testing.T) {
	v, _, err := parseLocalWord(newTestCursor(`=?utf-8?q?abc?=`))
	require.NoError(t, err)
	require.Equal(t, "=?utf-8?q?abc?=", v.Value)
	require.Equal(t, wordTypeAtom, v.Type)
}

func TestParsePhrase(t *testing.T) {
	inputs := map[string][]string{
		`foo "quoted"`:     {"foo", "quoted"},
		`"f\".c" "quoted"`: {"f\".c", "quoted"},
		`foo bar`:          {"foo", "bar"},
		`foo.bar`:          {"foo", ".", "bar"},
		`foo . bar`:        {"foo", ".", "bar"},
		`Joe Q. Public`:    {"Joe", "Q", ".", "Public"},
	}

	for i, e := range inputs {
		v, _, err := parsePhrase(newTestCursor(i))
		require.NoError(t, err)
		require.Equal(t, e, xslices.Map(v, func(v word) string { return v.Value }))
	}
}

func TestJoinWords(t *testing.T) {
	inputs := map[string]string{
		` atom                 `:                                 "atom",
		` atom  atom           `:                                 "atom atom",
		` atom  atom   atom    `:                                 "atom atom atom",
		`"no"   "space"   space space "two  space" "end space "`: "nospace space space two  spaceend space ",
		`Joe Q. Public`:                                          "Joe Q. Public",
		`first.last`:                                             "first.last",
		`first . last`:                                           "first. last",
		`First Middle"Last"`:                                     "First Middle Last",
		`=?utf-8?q?a?= =?utf-8?q?b?=`:                            "ab",
		"=?utf-8?q?a?=\r\n =?utf-8?q?b?=":                        "ab",
		`=?utf-8?q?a?= b =?utf-8?q?c?=`:                          "a b c",
		`=?utf-8?q?a?= "b"`:                                      "a b",
		`"a" =?utf-8?q?b?=`:                                      "a b",
	}

	for i, e := range inputs {
		v, _, err := parsePhrase(newTestCursor(i))
		require.NoError(t, err)
		require.Equal(t, e, joinWords(v), i)
	}
}
