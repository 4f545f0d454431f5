// Package folio provides a headless content platform core for Go.
//
// Folio is a library, not a service. Import it into your application to get
// schema-defined content types, validated entries with a draft, published
// and archived lifecycle, signed webhook delivery with retries, per-site API
// keys, contact forms and a media library.
//
// Key features:
//   - Content types built from typed fields (text, rich text, number, date,
//     boolean, media, relation) with per-field rules
//   - Deterministic entry validation that reports every problem at once
//   - Webhooks signed with HMAC-SHA256, retried with exponential backoff and
//     recorded in a bounded delivery log
//   - Composable store pattern with multiple backends (Postgres, SQLite,
//     MongoDB, Redis, Memory)
//   - Forge-native with standalone fallback
//
// Quick start:
//
//	f, err := folio.New(
//	    folio.WithStore(memory.New()),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	f.Start(ctx)
//	defer f.Stop(ctx)
//
//	ct, _ := f.ContentTypes().Create(ctx, contenttype.Input{
//	    Name: "Blog Post",
//	    Slug: "blog-post",
//	    Fields: []field.Definition{
//	        {Name: "title", Label: "Title", Required: true, Rules: field.TextRules{}},
//	    },
//	})
//
//	e, _ := f.Entries().Create(ctx, entry.CreateInput{
//	    ContentTypeID: ct.ID,
//	    Data:          field.MustParseData(`{"title":"Hello"}`),
//	})
//	f.Entries().Publish(ctx, e.ID, "editor@example.com")
package folio
