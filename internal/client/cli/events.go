package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/eventfeed/internal/client/client"
	"github.com/dmitrijs2005/eventfeed/internal/client/models"
	"github.com/dmitrijs2005/eventfeed/internal/filex"
)

var errNoFeed = errors.New("no feed is open, log in first")

// maxImageBytes bounds uploads below the server's message limit.
const maxImageBytes = 10 << 20

// readImage is a test seam.
var readImage = func(path string) (filex.File, error) {
	return filex.ReadImage(path, maxImageBytes)
}

// List prints the loaded events of the current feed.
func (a *App) List(ctx context.Context) error {
	if a.feed == nil {
		a.printError(errNoFeed)
		return errNoFeed
	}
	if a.feed.IsLoading() {
		fmt.Fprintln(a.out, "Loading...")
		return nil
	}
	if err := a.feed.Err(); err != nil {
		a.printError(err)
	}

	events := a.feed.List()
	if len(events) == 0 {
		fmt.Fprintln(a.out, "No events")
	}
	for _, e := range events {
		a.printEvent(e)
	}
	if a.feed.HasNextPage() {
		fmt.Fprintln(a.out, "-- type 'more' to load the next page --")
	}
	return nil
}

// More loads the next page and prints the whole list.
func (a *App) More(ctx context.Context) error {
	if a.feed == nil {
		a.printError(errNoFeed)
		return errNoFeed
	}
	if !a.feed.HasNextPage() {
		fmt.Fprintln(a.out, "No more events")
		return nil
	}
	if err := a.feed.LoadNextPage(ctx); err != nil {
		a.printError(err)
		return err
	}
	return a.List(ctx)
}

// Create asks for the event fields and submits them. The new event shows
// up at the top of the list once the server accepts it.
func (a *App) Create(ctx context.Context) error {
	if a.feed == nil {
		a.printError(errNoFeed)
		return errNoFeed
	}

	title, err := getSimpleText(a.reader, "Title", a.out)
	if err != nil {
		return err
	}
	description, err := getMultiline(a.reader, "Description", a.out)
	if err != nil {
		return err
	}
	date, err := getSimpleText(a.reader, "Date (YYYY-MM-DD)", a.out)
	if err != nil {
		return err
	}
	location, err := getSimpleText(a.reader, "Location", a.out)
	if err != nil {
		return err
	}
	hobbies, err := getList(a.reader, "Hobbies", a.out)
	if err != nil {
		return err
	}
	image, err := a.askImage()
	if err != nil {
		a.printError(err)
		return err
	}

	res := a.feed.Create(ctx, models.CreateInput{
		Title:       title,
		Description: description,
		Date:        date,
		Location:    location,
		Hobbies:     hobbies,
		Image:       image,
	})
	if !res.OK() {
		a.printError(res.Err)
		return res.Err
	}
	fmt.Fprintf(a.out, "Created event #%d\n", res.Event.ID)
	return nil
}

// Edit changes the fields of an owned event. Fields left empty are kept.
func (a *App) Edit(ctx context.Context, args []string) error {
	if a.feed == nil {
		a.printError(errNoFeed)
		return errNoFeed
	}
	id, err := parseID(args)
	if err != nil {
		a.printError(err)
		return err
	}

	current, ok := a.findEvent(id)
	if !ok {
		current = models.Event{ID: id}
	}

	in := models.UpdateInput{ID: id}
	if in.Title, err = getOptionalText(a.reader, "Title", current.Title, a.out); err != nil {
		return err
	}
	if in.Description, err = getOptionalText(a.reader, "Description", models.Deref(current.Description), a.out); err != nil {
		return err
	}
	if in.Date, err = getOptionalText(a.reader, "Date (YYYY-MM-DD)", current.Date, a.out); err != nil {
		return err
	}
	if in.Location, err = getOptionalText(a.reader, "Location", models.Deref(current.Location), a.out); err != nil {
		return err
	}
	if in.Image, err = a.askImage(); err != nil {
		a.printError(err)
		return err
	}

	updated, err := a.feed.Update(ctx, in)
	if err != nil {
		a.printError(err)
		return err
	}
	fmt.Fprintln(a.out, "Updated:")
	a.printEvent(updated)
	return nil
}

// Delete removes an owned event.
func (a *App) Delete(ctx context.Context, args []string) error {
	if a.feed == nil {
		a.printError(errNoFeed)
		return errNoFeed
	}
	id, err := parseID(args)
	if err != nil {
		a.printError(err)
		return err
	}
	if err := a.feed.Delete(ctx, id); err != nil {
		a.printError(err)
		return err
	}
	fmt.Fprintf(a.out, "Deleted event #%d\n", id)
	return nil
}

// Filter switches the feed to a new filter given as key=value arguments.
// Without arguments the filter is cleared.
func (a *App) Filter(ctx context.Context, args []string) error {
	filter, err := parseFilter(args)
	if err != nil {
		a.printError(err)
		return err
	}
	if err := a.openFeed(ctx, filter); err != nil {
		a.printError(err)
		return err
	}
	fmt.Fprintf(a.out, "Filter: %s\n", filter)
	return a.List(ctx)
}

// Pending prints the ids of events with changes awaiting the server.
func (a *App) Pending(ctx context.Context) error {
	if a.feed == nil {
		a.printError(errNoFeed)
		return errNoFeed
	}
	ids := a.feed.PendingIDs()
	if len(ids) == 0 && !a.feed.IsCreating() {
		fmt.Fprintln(a.out, "Nothing pending")
		return nil
	}
	if a.feed.IsCreating() {
		fmt.Fprintln(a.out, "Creating a new event...")
	}
	for _, id := range ids {
		fmt.Fprintf(a.out, "#%d\n", id)
	}
	return nil
}

// Hobbies prints the hobby tags known to the server.
func (a *App) Hobbies(ctx context.Context) error {
	hobbies, err := a.api.ListHobbies(ctx)
	if err != nil {
		a.printError(err)
		return err
	}
	if len(hobbies) == 0 {
		fmt.Fprintln(a.out, "No hobbies yet")
		return nil
	}
	fmt.Fprintln(a.out, strings.Join(hobbies, ", "))
	return nil
}

func (a *App) findEvent(id int64) (models.Event, bool) {
	for _, e := range a.feed.List() {
		if e.ID == id {
			return e, true
		}
	}
	return models.Event{}, false
}

// askImage asks for an optional image path and loads the file.
func (a *App) askImage() (*models.ImageUpload, error) {
	path, err := getSimpleText(a.reader, "Image file path (Enter to skip)", a.out)
	if err != nil || path == "" {
		return nil, nil
	}
	f, err := readImage(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return &models.ImageUpload{
		Filename:    f.Name,
		ContentType: f.ContentType,
		Data:        f.Data,
	}, nil
}

func (a *App) printEvent(e models.Event) {
	marker := ""
	if a.feed != nil && a.feed.IsPending(e.ID) {
		marker = " (saving...)"
	}
	official := ""
	if e.Official {
		official = " [official]"
	}
	fmt.Fprintf(a.out, "#%d %s%s%s\n", e.ID, e.Title, official, marker)
	fmt.Fprintf(a.out, "    %s @ %s\n", e.Date, models.Deref(e.Location))
	if d := models.Deref(e.Description); d != "" {
		fmt.Fprintf(a.out, "    %s\n", strings.ReplaceAll(d, "\n", "\n    "))
	}
	if len(e.Hobbies) > 0 {
		fmt.Fprintf(a.out, "    hobbies: %s\n", strings.Join(e.Hobbies, ", "))
	}
	if e.Image != nil {
		fmt.Fprintf(a.out, "    image: %s\n", *e.Image)
	}
}

// printError renders err for a human, listing validation messages per
// field.
func (a *App) printError(err error) {
	var ve *models.ValidationError
	var se *client.ServerError
	switch {
	case errors.As(err, &ve):
		fmt.Fprintln(a.out, "Please fix the following:")
		keys := make([]string, 0, len(ve.Fields))
		for k := range ve.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(a.out, "  %s: %s\n", k, strings.Join(ve.Fields[k], "; "))
		}
	case errors.Is(err, client.ErrNetwork):
		fmt.Fprintln(a.out, "Server unavailable, try again later")
	case errors.Is(err, client.ErrUnauthorized):
		fmt.Fprintln(a.out, "Not authorized, please log in again")
	case errors.Is(err, client.ErrForbidden):
		fmt.Fprintln(a.out, "You can only change your own events")
	case errors.Is(err, client.ErrNotFound):
		fmt.Fprintln(a.out, "Event not found")
	case errors.As(err, &se):
		fmt.Fprintf(a.out, "Server error: %s\n", se.Message)
	default:
		fmt.Fprintf(a.out, "Error: %v\n", err)
	}
}

func parseID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, errors.New("usage: <command> <id>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", args[0])
	}
	return id, nil
}

// parseFilter reads location=, hobby= and official= arguments.
func parseFilter(args []string) (models.Filter, error) {
	var f models.Filter
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || value == "" {
			return models.Filter{}, fmt.Errorf("invalid filter %q, expected key=value", arg)
		}
		switch key {
		case "location":
			f.Location = value
		case "hobby":
			f.Hobby = value
		case "official":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return models.Filter{}, fmt.Errorf("invalid official value %q", value)
			}
			f.Official = &b
		default:
			return models.Filter{}, fmt.Errorf("unknown filter %q", key)
		}
	}
	return f, nil
}
