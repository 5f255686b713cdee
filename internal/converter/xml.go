package converter

import (
	"bytes"
	"encoding/xml"
	stderrors "errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/mcncl/jsontools/internal/config"
	"github.com/mcncl/jsontools/internal/errors"
	"github.com/mcncl/jsontools/internal/formatter"
	"github.com/mcncl/jsontools/internal/models"
)

// Keys used to carry XML attributes and text next to child elements
const (
	AttributesKey = "@attributes"
	TextKey       = "#text"
)

// JSONToXML wraps a JSON document in the root element. Object keys become
// elements, array items become siblings named <key>_<index>, and null
// becomes an empty element. An "@attributes" object is written as the
// attributes of its parent element.
func (c *Converter) JSONToXML(text string) (string, error) {
	root, err := c.parser.ParseString(text)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")

	w := &xmlWriter{enc: enc, c: c}
	rootName := tagName(c.opts.RootTag)
	if items, ok := root.(models.JSONArray); ok {
		// A top-level array still needs a single document element.
		start := xml.StartElement{Name: xml.Name{Local: rootName}}
		if err := enc.EncodeToken(start); err != nil {
			return "", xmlWriteError(err)
		}
		for i, item := range items {
			if err := w.element(rootName+"_"+strconv.Itoa(i), item, 1); err != nil {
				return "", err
			}
		}
		if err := enc.EncodeToken(start.End()); err != nil {
			return "", xmlWriteError(err)
		}
	} else if err := w.element(rootName, root, 0); err != nil {
		return "", err
	}

	if err := enc.Flush(); err != nil {
		return "", xmlWriteError(err)
	}
	return buf.String(), nil
}

type xmlWriter struct {
	enc *xml.Encoder
	c   *Converter
}

func (w *xmlWriter) element(name string, v models.JSONValue, depth int) error {
	if depth > w.c.opts.MaxDepth {
		return errors.NewConversionError(
			fmt.Sprintf("maximum nesting depth of %d exceeded", w.c.opts.MaxDepth),
			errors.ErrTooDeep,
		)
	}

	switch val := v.(type) {
	case models.JSONArray:
		for i, item := range val {
			if err := w.element(name+"_"+strconv.Itoa(i), item, depth+1); err != nil {
				return err
			}
		}
		return nil
	case *models.JSONObject:
		return w.object(name, val, depth)
	}

	start := xml.StartElement{Name: xml.Name{Local: name}}
	if err := w.enc.EncodeToken(start); err != nil {
		return xmlWriteError(err)
	}
	if v != nil {
		s, err := scalarText(v)
		if err != nil {
			return err
		}
		if err := w.enc.EncodeToken(xml.CharData(s)); err != nil {
			return xmlWriteError(err)
		}
	}
	return xmlWriteError(w.enc.EncodeToken(start.End()))
}

func (w *xmlWriter) object(name string, obj *models.JSONObject, depth int) error {
	start := xml.StartElement{Name: xml.Name{Local: name}}
	if raw, ok := obj.Get(AttributesKey); ok {
		if attrs, isObj := raw.(*models.JSONObject); isObj {
			for _, key := range attrs.Keys() {
				value, _ := attrs.Get(key)
				s, err := scalarText(value)
				if err != nil {
					return err
				}
				start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: tagName(key)}, Value: s})
			}
		}
	}
	if err := w.enc.EncodeToken(start); err != nil {
		return xmlWriteError(err)
	}

	for _, key := range obj.Keys() {
		child, _ := obj.Get(key)
		switch key {
		case AttributesKey:
			if _, isObj := child.(*models.JSONObject); isObj {
				continue
			}
		case TextKey:
			s, err := scalarText(child)
			if err != nil {
				return err
			}
			if err := w.enc.EncodeToken(xml.CharData(s)); err != nil {
				return xmlWriteError(err)
			}
			continue
		}
		childName := tagName(config.ApplyCase(w.c.opts.TagCase, key))
		if err := w.element(childName, child, depth+1); err != nil {
			return err
		}
	}
	return xmlWriteError(w.enc.EncodeToken(start.End()))
}

// scalarText renders a leaf value as element or attribute text. Composite
// values are embedded as compact JSON.
func scalarText(v models.JSONValue) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case bool:
		return strconv.FormatBool(val), nil
	case *models.JSONObject, models.JSONArray:
		return formatter.NewFormatter().Minify(val)
	}
	return formatter.FormatNumber(v)
}

// tagName turns a JSON key into a valid XML name. Characters that cannot
// appear in a name become underscores, and a name that cannot start with
// its first character is prefixed with one.
func tagName(key string) string {
	if key == "" {
		return "_"
	}
	var b strings.Builder
	for i, r := range key {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case r == '-' || r == '.' || unicode.IsDigit(r):
			if i == 0 {
				b.WriteByte('_')
			}
		default:
			r = '_'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func xmlWriteError(err error) error {
	if err == nil {
		return nil
	}
	return errors.NewConversionError("failed to write XML", err)
}

// XMLToJSON converts the document element into JSON. Attributes are kept
// under "@attributes", an element holding only text becomes a string, and
// repeated child elements become an array.
func (c *Converter) XMLToJSON(text string) (string, error) {
	dec := xml.NewDecoder(strings.NewReader(text))

	var root models.JSONValue
	found := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", invalidXML(err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if found {
				return "", invalidXML(fmt.Errorf("unexpected second root element <%s>", t.Name.Local))
			}
			if root, err = c.readElement(dec, t, 0); err != nil {
				return "", invalidXML(err)
			}
			found = true
		case xml.CharData:
			if strings.TrimSpace(string(t)) != "" {
				return "", invalidXML(stderrors.New("text outside the document element"))
			}
		}
	}
	if !found {
		return "", invalidXML(stderrors.New("no document element"))
	}

	c.opts.Logger.Debug("converted XML to JSON")
	return c.render(root)
}

func (c *Converter) readElement(dec *xml.Decoder, start xml.StartElement, depth int) (models.JSONValue, error) {
	if depth > c.opts.MaxDepth {
		return nil, errors.NewConversionError(
			fmt.Sprintf("maximum nesting depth of %d exceeded", c.opts.MaxDepth),
			errors.ErrTooDeep,
		)
	}

	obj := models.NewJSONObject(0)
	if len(start.Attr) > 0 {
		attrs := models.NewJSONObject(len(start.Attr))
		for _, a := range start.Attr {
			attrs.Set(attrName(a.Name), a.Value)
		}
		obj.Set(AttributesKey, attrs)
	}

	var text strings.Builder
	hasChildren := false
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			hasChildren = true
			child, err := c.readElement(dec, t, depth+1)
			if err != nil {
				return nil, err
			}
			name := config.ApplyCase(c.opts.TagCase, t.Name.Local)
			existing, ok := obj.Get(name)
			switch {
			case !ok:
				obj.Set(name, child)
			case isArray(existing):
				obj.Set(name, append(existing.(models.JSONArray), child))
			default:
				obj.Set(name, models.JSONArray{existing, child})
			}
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			if hasChildren {
				return obj, nil
			}
			content := strings.TrimSpace(text.String())
			if len(start.Attr) == 0 {
				return content, nil
			}
			if content != "" {
				obj.Set(TextKey, content)
			}
			return obj, nil
		}
	}
}

func isArray(v models.JSONValue) bool {
	_, ok := v.(models.JSONArray)
	return ok
}

func attrName(name xml.Name) string {
	if name.Space == "xmlns" {
		return "xmlns:" + name.Local
	}
	return name.Local
}

func invalidXML(err error) error {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return err
	}
	return errors.NewConversionError("Invalid XML format", fmt.Errorf("%w: %w", errors.ErrInvalidXML, err))
}
