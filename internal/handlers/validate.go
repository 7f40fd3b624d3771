// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/schema"

	"blogicum/internal/blog"
	"blogicum/internal/imaging"
	"blogicum/internal/render"
)

// multipartMemory is how much of a multipart body is kept in memory
// before spilling to temporary files.
const multipartMemory = 8 << 20

// decoder is shared; schema.Decoder caches struct metadata and is safe
// for concurrent use.
var decoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

// postForm mirrors the fields of the post form. Choice and date fields
// stay strings so a bad value becomes a field error, not a decode error.
type postForm struct {
	Title       string `schema:"title"`
	Text        string `schema:"text"`
	PubDate     string `schema:"pub_date"`
	Location    string `schema:"location"`
	Category    string `schema:"category"`
	IsPublished bool   `schema:"is_published"`
	ImageClear  bool   `schema:"image_clear"`
}

type commentForm struct {
	Text string `schema:"text"`
}

type profileForm struct {
	Username  string `schema:"username"`
	Email     string `schema:"email"`
	FirstName string `schema:"first_name"`
	LastName  string `schema:"last_name"`
}

type registerForm struct {
	Username  string `schema:"username"`
	Email     string `schema:"email"`
	Password1 string `schema:"password1"`
	Password2 string `schema:"password2"`
}

// decodeForm parses the request body (urlencoded or multipart) into dst.
// Fields that cannot be converted are reported per field.
func decodeForm(r *http.Request, dst any) (map[string]string, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, fmt.Errorf("parse form: %w", err)
	}

	err := decoder.Decode(dst, r.PostForm)
	if err == nil {
		return nil, nil
	}
	var multi schema.MultiError
	if !errors.As(err, &multi) {
		return nil, fmt.Errorf("decode form: %w", err)
	}
	fields := make(map[string]string, len(multi))
	for field := range multi {
		fields[field] = "enter a valid value"
	}
	return fields, nil
}

// decodePost reads the post form into a blog.PostInput. The second
// result holds field errors found before the service sees the input.
func decodePost(r *http.Request) (blog.PostInput, map[string]string, error) {
	var f postForm
	errs, err := decodeForm(r, &f)
	if err != nil {
		return blog.PostInput{}, nil, err
	}
	if errs == nil {
		errs = map[string]string{}
	}

	in := blog.PostInput{
		Title:       f.Title,
		Text:        f.Text,
		IsPublished: f.IsPublished,
		ClearImage:  f.ImageClear,
	}

	if s := strings.TrimSpace(f.PubDate); s != "" {
		t, err := time.ParseInLocation(render.DateTimeLocal, s, time.Local)
		if err != nil {
			errs["pub_date"] = "enter a valid date and time"
		} else {
			in.PubDate = t
		}
	}
	if id, ok := optionalID(f.Location); ok {
		in.LocationID = id
	} else {
		errs["location"] = "select a valid location"
	}
	if id, ok := optionalID(f.Category); ok {
		in.CategoryID = id
	} else {
		errs["category"] = "select a valid category"
	}

	data, err := readUpload(r, "image")
	if err != nil {
		return blog.PostInput{}, nil, err
	}
	in.Image = data

	return in, errs, nil
}

// optionalID parses a select value. An empty value is a valid "none".
func optionalID(s string) (*int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return nil, false
	}
	return &id, true
}

// readUpload returns the bytes of an uploaded file, or nil when the field
// is empty. One byte past imaging.MaxBytes is read so the size check in
// imaging can reject oversized files.
func readUpload(r *http.Request, field string) ([]byte, error) {
	file, _, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, imaging.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	return data, nil
}

// postValues fills the post form from a stored post for the edit page.
func postValues(title, text string, pubDate time.Time, locationID, categoryID *int64, published bool) url.Values {
	v := url.Values{}
	v.Set("title", title)
	v.Set("text", text)
	if !pubDate.IsZero() {
		v.Set("pub_date", pubDate.Local().Format(render.DateTimeLocal))
	}
	if locationID != nil {
		v.Set("location", strconv.FormatInt(*locationID, 10))
	}
	if categoryID != nil {
		v.Set("category", strconv.FormatInt(*categoryID, 10))
	}
	if published {
		v.Set("is_published", "on")
	}
	return v
}

// formValues copies the submitted fields for re-rendering, leaving out
// the CSRF token and passwords.
func formValues(r *http.Request) url.Values {
	v := url.Values{}
	for k, vals := range r.PostForm {
		switch k {
		case "csrf_token", "password", "password1", "password2":
			continue
		}
		v[k] = vals
	}
	return v
}
