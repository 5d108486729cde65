package tagtree

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Marshal_WritesFieldsInInsertionOrder(t *testing.T) {
	page1 := NewCompound()
	page1.SetString("text", "p1")
	page1.SetString("photoname", "")

	page2 := NewCompound()
	page2.SetString("text", "p\"2")
	page2.SetString("photoname", "ph")

	root := NewCompound()
	root.SetString("name", "book")
	require.NoError(t, root.SetList("pages", NewList(page1, page2)))
	require.NoError(t, root.SetCompound("display", NewCompound()))

	data, err := Marshal(root)

	require.NoError(t, err)
	assert.Equal(
		t,
		`{"name":"book","pages":[{"text":"p1","photoname":""},{"text":"p\"2","photoname":"ph"}],"display":{}}`,
		string(data),
	)
}

func Test_Marshal_EmptyList(t *testing.T) {
	root := NewCompound()
	require.NoError(t, root.SetList("pages", NewList()))

	data, err := Marshal(root)

	require.NoError(t, err)
	assert.Equal(t, `{"pages":[]}`, string(data))
}

func Test_Marshal_Nil(t *testing.T) {
	_, err := Marshal(nil)

	assert.ErrorIs(t, err, ErrNilTag)
}

func Test_Unmarshal_Success(t *testing.T) {
	data := []byte(`{"pages":[{"text":"p1"},{"text":"p2","photoname":"ph"}],"display":{"Name":"Diary"}}`)

	root, err := Unmarshal(data)
	require.NoError(t, err)

	assert.Equal(t, []string{"pages", "display"}, root.Names())

	pages, err := root.GetList("pages")
	require.NoError(t, err)
	assert.Equal(t, 2, pages.Len())

	page2, err := pages.GetCompound(1)
	require.NoError(t, err)
	photoname, err := page2.GetString("photoname")
	require.NoError(t, err)
	assert.Equal(t, "ph", photoname)

	display, err := root.GetCompound("display")
	require.NoError(t, err)
	name, err := display.GetString("Name")
	require.NoError(t, err)
	assert.Equal(t, "Diary", name)
}

func Test_Unmarshal_RoundTrip(t *testing.T) {
	page := NewCompound()
	page.SetString("text", "line one\nline two ü")
	page.SetString("photoname", "")

	root := NewCompound()
	require.NoError(t, root.SetList("pages", NewList(page)))

	data, err := Marshal(root)
	require.NoError(t, err)

	decoded, err := Unmarshal(data)
	require.NoError(t, err)

	assert.True(t, Equal(root, decoded))
}

func Test_Unmarshal_AcceptsTrailingWhitespace(t *testing.T) {
	root, err := Unmarshal([]byte("{\"a\":\"b\"}  \n\t"))

	require.NoError(t, err)
	value, err := root.GetString("a")
	require.NoError(t, err)
	assert.Equal(t, "b", value)
}

func Test_Marshal_EncodesStringsThatAreNotJSONSafe(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		encoded string
	}{
		{name: "nul byte", value: "a\x00b", encoded: EncodedStringPrefix + "YQBi"},
		{name: "invalid utf-8", value: "\xff\xfe", encoded: EncodedStringPrefix + "//4="},
		{name: "prefix collision", value: "base64:x", encoded: EncodedStringPrefix + "YmFzZTY0Ong="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// arrange
			root := NewCompound()
			root.SetString("text", tt.value)
			root.SetString(tt.value, "key")

			// act
			data, err := Marshal(root)

			// assert
			require.NoError(t, err)
			assert.True(t, utf8.Valid(data), "output must be valid UTF-8")
			assert.NotContains(t, string(data), `\u0000`)
			assert.Equal(t, `{"text":"`+tt.encoded+`","`+tt.encoded+`":"key"}`, string(data))

			decoded, err := Unmarshal(data)
			require.NoError(t, err)
			assert.True(t, Equal(root, decoded))

			text, err := decoded.GetString("text")
			require.NoError(t, err)
			assert.Equal(t, tt.value, text)
		})
	}
}

func Test_Marshal_KeepsControlCharactersOtherThanNul(t *testing.T) {
	root := NewCompound()
	root.SetString("text", "a\x01b")

	data, err := Marshal(root)

	require.NoError(t, err)
	assert.Equal(t, `{"text":"a\u0001b"}`, string(data))
}

func Test_Unmarshal_ErrorCases(t *testing.T) {
	tests := []struct {
		name        string
		data        []byte
		expectedErr error
	}{
		{
			name:        "nil input",
			data:        nil,
			expectedErr: ErrInvalidJSON,
		},
		{
			name:        "malformed value",
			data:        []byte(`{"text": json}`),
			expectedErr: ErrInvalidJSON,
		},
		{
			name:        "unterminated object",
			data:        []byte(`{"text": "a"`),
			expectedErr: ErrInvalidJSON,
		},
		{
			name:        "trailing text",
			data:        []byte(`{"a":"b"} trailing`),
			expectedErr: ErrInvalidJSON,
		},
		{
			name:        "second root object",
			data:        []byte(`{"a":"b"}{"c":"d"}`),
			expectedErr: ErrInvalidJSON,
		},
		{
			name:        "stray closing brace",
			data:        []byte(`{"a":"b"}}`),
			expectedErr: ErrInvalidJSON,
		},
		{
			name:        "encoded string with invalid base64",
			data:        []byte(`{"text":"base64:%%%"}`),
			expectedErr: ErrInvalidJSON,
		},
		{
			name:        "encoded field name with invalid base64",
			data:        []byte(`{"base64:%%%":"a"}`),
			expectedErr: ErrInvalidJSON,
		},
		{
			name:        "top level array",
			data:        []byte(`[]`),
			expectedErr: ErrUnsupportedJSON,
		},
		{
			name:        "number leaf",
			data:        []byte(`{"count": 1}`),
			expectedErr: ErrUnsupportedJSON,
		},
		{
			name:        "null in list",
			data:        []byte(`{"pages": [null]}`),
			expectedErr: ErrUnsupportedJSON,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal(tt.data)
			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}
