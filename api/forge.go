package api

import (
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/folio"
	"github.com/xraph/folio/contenttype"
	"github.com/xraph/folio/delivery"
	"github.com/xraph/folio/entry"
	"github.com/xraph/folio/form"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/media"
	"github.com/xraph/folio/site"
	"github.com/xraph/folio/validate"
	"github.com/xraph/folio/webhook"
)

// ForgeAPI wires all Forge-style admin handlers together.
type ForgeAPI struct {
	folio *folio.Folio
	log   forge.Logger
}

// NewForgeAPI creates a ForgeAPI from a Folio instance.
func NewForgeAPI(f *folio.Folio, log forge.Logger) *ForgeAPI {
	return &ForgeAPI{
		folio: f,
		log:   log,
	}
}

// RegisterRoutes registers all Folio admin API routes into the given Forge
// router with full OpenAPI metadata.
func (a *ForgeAPI) RegisterRoutes(router forge.Router) {
	a.registerContentTypeRoutes(router)
	a.registerEntryRoutes(router)
	a.registerWebhookRoutes(router)
	a.registerSiteRoutes(router)
	a.registerFormRoutes(router)
	a.registerMediaRoutes(router)
	a.registerStatsRoutes(router)
}

// ---------------------------------------------------------------------------
// Content type routes
// ---------------------------------------------------------------------------

func (a *ForgeAPI) registerContentTypeRoutes(router forge.Router) {
	g := router.Group("", forge.WithGroupTags("content-types"))

	if err := g.POST("/content-types", a.createContentType,
		forge.WithSummary("Create content type"),
		forge.WithDescription("Registers a content type with its field schema."),
		forge.WithOperationID("createContentType"),
		forge.WithRequestSchema(CreateContentTypeForgeRequest{}),
		forge.WithCreatedResponse(contenttype.ContentType{}),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register createContentType route", forge.Error(err))
	}

	if err := g.GET("/content-types", a.listContentTypes,
		forge.WithSummary("List content types"),
		forge.WithDescription("Returns content types ordered by name."),
		forge.WithOperationID("listContentTypes"),
		forge.WithRequestSchema(ListContentTypesForgeRequest{}),
		forge.WithListResponse(contenttype.ContentType{}, http.StatusOK),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register listContentTypes route", forge.Error(err))
	}

	if err := g.GET("/content-types/slug/:slug", a.getContentTypeBySlug,
		forge.WithSummary("Get content type by slug"),
		forge.WithDescription("Returns the content type with the given slug."),
		forge.WithOperationID("getContentTypeBySlug"),
		forge.WithResponseSchema(http.StatusOK, "Content type details", contenttype.ContentType{}),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register getContentTypeBySlug route", forge.Error(err))
	}

	if err := g.GET("/content-types/:contentTypeId", a.getContentType,
		forge.WithSummary("Get content type"),
		forge.WithDescription("Returns details of a specific content type."),
		forge.WithOperationID("getContentType"),
		forge.WithResponseSchema(http.StatusOK, "Content type details", contenttype.ContentType{}),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register getContentType route", forge.Error(err))
	}

	if err := g.PUT("/content-types/:contentTypeId", a.updateContentType,
		forge.WithSummary("Update content type"),
		forge.WithDescription("Updates a content type. Existing entries are checked against the new schema on their next write."),
		forge.WithOperationID("updateContentType"),
		forge.WithRequestSchema(UpdateContentTypeForgeRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Updated content type", contenttype.ContentType{}),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register updateContentType route", forge.Error(err))
	}

	if err := g.DELETE("/content-types/:contentTypeId", a.deleteContentType,
		forge.WithSummary("Delete content type"),
		forge.WithDescription("Deletes a content type together with all of its entries."),
		forge.WithOperationID("deleteContentType"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register deleteContentType route", forge.Error(err))
	}
}

func (a *ForgeAPI) createContentType(ctx forge.Context, req *CreateContentTypeForgeRequest) (*contenttype.ContentType, error) {
	ct, err := a.folio.ContentTypes().Create(ctx.Context(), contenttype.Input{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Fields:      req.Fields,
	})
	if err != nil {
		return nil, mapError(err)
	}

	err = ctx.JSON(http.StatusCreated, ct)
	if err != nil {
		return nil, mapError(err)
	}

	//nolint:nilnil // response already written via ctx.JSON.
	return nil, nil
}

func (a *ForgeAPI) listContentTypes(ctx forge.Context, req *ListContentTypesForgeRequest) ([]*contenttype.ContentType, error) {
	limit := req.Limit
	if limit == 0 {
		limit = 50
	}

	types, err := a.folio.ContentTypes().List(ctx.Context(), contenttype.ListOpts{
		Offset: req.Offset,
		Limit:  limit,
		Search: req.Search,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return types, nil
}

func (a *ForgeAPI) getContentType(ctx forge.Context, req *ContentTypeForgeRequest) (*contenttype.ContentType, error) {
	ctID, err := id.ParseContentTypeID(req.ContentTypeID)
	if err != nil {
		return nil, forge.BadRequest("invalid content type ID")
	}

	ct, getErr := a.folio.ContentTypes().Get(ctx.Context(), ctID)
	if getErr != nil {
		return nil, mapError(getErr)
	}

	return ct, nil
}

func (a *ForgeAPI) getContentTypeBySlug(ctx forge.Context, req *ContentTypeBySlugForgeRequest) (*contenttype.ContentType, error) {
	ct, err := a.folio.ContentTypes().GetBySlug(ctx.Context(), req.Slug)
	if err != nil {
		return nil, mapError(err)
	}

	return ct, nil
}

func (a *ForgeAPI) updateContentType(ctx forge.Context, req *UpdateContentTypeForgeRequest) (*contenttype.ContentType, error) {
	ctID, err := id.ParseContentTypeID(req.ContentTypeID)
	if err != nil {
		return nil, forge.BadRequest("invalid content type ID")
	}

	ct, updateErr := a.folio.ContentTypes().Update(ctx.Context(), ctID, contenttype.UpdateInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Fields:      req.Fields,
	})
	if updateErr != nil {
		return nil, mapError(updateErr)
	}

	return ct, nil
}

func (a *ForgeAPI) deleteContentType(ctx forge.Context, req *ContentTypeForgeRequest) (*contenttype.ContentType, error) {
	ctID, err := id.ParseContentTypeID(req.ContentTypeID)
	if err != nil {
		return nil, forge.BadRequest("invalid content type ID")
	}

	if deleteErr := a.folio.ContentTypes().Delete(ctx.Context(), ctID); deleteErr != nil {
		return nil, mapError(deleteErr)
	}

	err = ctx.NoContent(http.StatusNoContent)
	if err != nil {
		return nil, mapError(err)
	}

	//nolint:nilnil // response already written via ctx.NoContent.
	return nil, nil
}

// ---------------------------------------------------------------------------
// Entry routes
// ---------------------------------------------------------------------------

func (a *ForgeAPI) registerEntryRoutes(router forge.Router) {
	g := router.Group("", forge.WithGroupTags("entries"))

	if err := g.POST("/entries", a.createEntry,
		forge.WithSummary("Create entry"),
		forge.WithDescription("Validates data against the content type schema and stores a new entry."),
		forge.WithOperationID("createEntry"),
		forge.WithRequestSchema(CreateEntryForgeRequest{}),
		forge.WithCreatedResponse(entry.Entry{}),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register createEntry route", forge.Error(err))
	}

	if err := g.POST("/entries/validate", a.validateEntry,
		forge.WithSummary("Validate entry data"),
		forge.WithDescription("Runs the write-time checks on entry data without storing anything."),
		forge.WithOperationID("validateEntry"),
		forge.WithRequestSchema(ValidateEntryForgeRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Validation result", validate.Result{}),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register validateEntry route", forge.Error(err))
	}

	if err := g.GET("/entries", a.listEntries,
		forge.WithSummary("List entries"),
		forge.WithDescription("Returns a filtered, sorted page of entries."),
		forge.WithOperationID("listEntries"),
		forge.WithRequestSchema(ListEntriesForgeRequest{}),
		forge.WithListResponse(entry.Entry{}, http.StatusOK),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register listEntries route", forge.Error(err))
	}

	if err := g.GET("/entries/:entryId", a.getEntry,
		forge.WithSummary("Get entry"),
		forge.WithDescription("Returns details of a specific entry."),
		forge.WithOperationID("getEntry"),
		forge.WithResponseSchema(http.StatusOK, "Entry details", entry.Entry{}),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register getEntry route", forge.Error(err))
	}

	if err := g.PUT("/entries/:entryId", a.updateEntry,
		forge.WithSummary("Update entry"),
		forge.WithDescription("Re-validates and updates an entry."),
		forge.WithOperationID("updateEntry"),
		forge.WithRequestSchema(UpdateEntryForgeRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Updated entry", entry.Entry{}),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register updateEntry route", forge.Error(err))
	}

	if err := g.DELETE("/entries/:entryId", a.deleteEntry,
		forge.WithSummary("Delete entry"),
		forge.WithDescription("Permanently deletes an entry."),
		forge.WithOperationID("deleteEntry"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register deleteEntry route", forge.Error(err))
	}

	transitions := []struct {
		path, op, summary, desc string
		fn                      func(forge.Context, *EntryForgeRequest) (*entry.Entry, error)
	}{
		{"/entries/:entryId/publish", "publishEntry", "Publish entry", "Validates an entry and moves it to PUBLISHED.", a.publishEntry},
		{"/entries/:entryId/unpublish", "unpublishEntry", "Unpublish entry", "Returns a published entry to DRAFT.", a.unpublishEntry},
		{"/entries/:entryId/archive", "archiveEntry", "Archive entry", "Moves an entry to ARCHIVED.", a.archiveEntry},
	}
	for _, t := range transitions {
		if err := g.POST(t.path, t.fn,
			forge.WithSummary(t.summary),
			forge.WithDescription(t.desc),
			forge.WithOperationID(t.op),
			forge.WithResponseSchema(http.StatusOK, "Entry after the transition", entry.Entry{}),
			forge.WithErrorResponses(),
		); err != nil {
			a.log.Error("Failed to register "+t.op+" route", forge.Error(err))
		}
	}
}

func (a *ForgeAPI) createEntry(ctx forge.Context, req *CreateEntryForgeRequest) (*entry.Entry, error) {
	ctID, err := id.ParseContentTypeID(req.ContentTypeID)
	if err != nil {
		return nil, forge.BadRequest("invalid content type ID")
	}

	e, createErr := a.folio.Entries().Create(ctx.Context(), entry.CreateInput{
		ContentTypeID: ctID,
		Data:          req.Data,
		Status:        entry.Status(req.Status),
	})
	if createErr != nil {
		return nil, mapError(createErr)
	}

	err = ctx.JSON(http.StatusCreated, e)
	if err != nil {
		return nil, mapError(err)
	}

	//nolint:nilnil // response already written via ctx.JSON.
	return nil, nil
}

func (a *ForgeAPI) validateEntry(ctx forge.Context, req *ValidateEntryForgeRequest) (*validate.Result, error) {
	ctID, err := id.ParseContentTypeID(req.ContentTypeID)
	if err != nil {
		return nil, forge.BadRequest("invalid content type ID")
	}

	res, valErr := a.folio.Entries().Validate(ctx.Context(), ctID, req.Data)
	if valErr != nil {
		return nil, mapError(valErr)
	}

	return &res, nil
}

func (a *ForgeAPI) listEntries(ctx forge.Context, req *ListEntriesForgeRequest) ([]*entry.Entry, error) {
	limit := req.Limit
	if limit == 0 {
		limit = 50
	}

	opts := entry.ListOpts{
		Offset:    req.Offset,
		Limit:     limit,
		Search:    req.Search,
		SortBy:    entry.SortField(req.SortBy),
		Ascending: req.Order == "asc",
	}
	if req.ContentTypeID != "" {
		ctID, err := id.ParseContentTypeID(req.ContentTypeID)
		if err != nil {
			return nil, forge.BadRequest("invalid content type ID")
		}
		opts.ContentTypeID = ctID
	}
	if req.Status != "" {
		status := entry.Status(req.Status)
		if !status.Valid() {
			return nil, forge.BadRequest("invalid status")
		}
		opts.Status = &status
	}

	entries, err := a.folio.Entries().List(ctx.Context(), opts)
	if err != nil {
		return nil, mapError(err)
	}

	return entries, nil
}

func (a *ForgeAPI) getEntry(ctx forge.Context, req *EntryForgeRequest) (*entry.Entry, error) {
	entryID, err := id.ParseEntryID(req.EntryID)
	if err != nil {
		return nil, forge.BadRequest("invalid entry ID")
	}

	e, getErr := a.folio.Entries().Get(ctx.Context(), entryID)
	if getErr != nil {
		return nil, mapError(getErr)
	}

	return e, nil
}

func (a *ForgeAPI) updateEntry(ctx forge.Context, req *UpdateEntryForgeRequest) (*entry.Entry, error) {
	entryID, err := id.ParseEntryID(req.EntryID)
	if err != nil {
		return nil, forge.BadRequest("invalid entry ID")
	}

	in := entry.UpdateInput{Data: req.Data}
	if req.Status != nil {
		status := entry.Status(*req.Status)
		in.Status = &status
	}

	e, updateErr := a.folio.Entries().Update(ctx.Context(), entryID, in)
	if updateErr != nil {
		return nil, mapError(updateErr)
	}

	return e, nil
}

func (a *ForgeAPI) deleteEntry(ctx forge.Context, req *EntryForgeRequest) (*entry.Entry, error) {
	entryID, err := id.ParseEntryID(req.EntryID)
	if err != nil {
		return nil, forge.BadRequest("invalid entry ID")
	}

	if deleteErr := a.folio.Entries().Delete(ctx.Context(), entryID); deleteErr != nil {
		return nil, mapError(deleteErr)
	}

	err = ctx.NoContent(http.StatusNoContent)
	if err != nil {
		return nil, mapError(err)
	}

	//nolint:nilnil // response already written via ctx.NoContent.
	return nil, nil
}

func (a *ForgeAPI) publishEntry(ctx forge.Context, req *EntryForgeRequest) (*entry.Entry, error) {
	entryID, err := id.ParseEntryID(req.EntryID)
	if err != nil {
		return nil, forge.BadRequest("invalid entry ID")
	}

	e, pubErr := a.folio.Entries().Publish(ctx.Context(), entryID, "")
	if pubErr != nil {
		return nil, mapError(pubErr)
	}

	return e, nil
}

func (a *ForgeAPI) unpublishEntry(ctx forge.Context, req *EntryForgeRequest) (*entry.Entry, error) {
	entryID, err := id.ParseEntryID(req.EntryID)
	if err != nil {
		return nil, forge.BadRequest("invalid entry ID")
	}

	e, unpubErr := a.folio.Entries().Unpublish(ctx.Context(), entryID, "")
	if unpubErr != nil {
		return nil, mapError(unpubErr)
	}

	return e, nil
}

func (a *ForgeAPI) archiveEntry(ctx forge.Context, req *EntryForgeRequest) (*entry.Entry, error) {
	entryID, err := id.ParseEntryID(req.EntryID)
	if err != nil {
		return nil, forge.BadRequest("invalid entry ID")
	}

	e, archErr := a.folio.Entries().Archive(ctx.Context(), entryID, "")
	if archErr != nil {
		return nil, mapError(archErr)
	}

	return e, nil
}

// ---------------------------------------------------------------------------
// Webhook routes
// ---------------------------------------------------------------------------

func (a *ForgeAPI) registerWebhookRoutes(router forge.Router) {
	g := router.Group("", forge.WithGroupTags("webhooks"))

	if err := g.POST("/webhooks", a.createWebhook,
		forge.WithSummary("Create webhook"),
		forge.WithDescription("Registers a webhook. The signing secret is returned only in this response."),
		forge.WithOperationID("createWebhook"),
		forge.WithRequestSchema(CreateWebhookForgeRequest{}),
		forge.WithCreatedResponse(webhookCreated{}),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register createWebhook route", forge.Error(err))
	}

	if err := g.GET("/webhooks", a.listWebhooks,
		forge.WithSummary("List webhooks"),
		forge.WithDescription("Returns webhooks, newest first, with masked secrets."),
		forge.WithOperationID("listWebhooks"),
		forge.WithRequestSchema(ListWebhooksForgeRequest{}),
		forge.WithListResponse(webhook.View{}, http.StatusOK),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register listWebhooks route", forge.Error(err))
	}

	if err := g.GET("/webhooks/:webhookId", a.getWebhook,
		forge.WithSummary("Get webhook"),
		forge.WithDescription("Returns a webhook with its statistics and delivery log."),
		forge.WithOperationID("getWebhook"),
		forge.WithResponseSchema(http.StatusOK, "Webhook details", webhook.View{}),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register getWebhook route", forge.Error(err))
	}

	if err := g.PUT("/webhooks/:webhookId", a.updateWebhook,
		forge.WithSummary("Update webhook"),
		forge.WithDescription("Updates webhook configuration. Statistics are not affected."),
		forge.WithOperationID("updateWebhook"),
		forge.WithRequestSchema(UpdateWebhookForgeRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Updated webhook", webhook.View{}),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register updateWebhook route", forge.Error(err))
	}

	if err := g.DELETE("/webhooks/:webhookId", a.deleteWebhook,
		forge.WithSummary("Delete webhook"),
		forge.WithDescription("Permanently deletes a webhook."),
		forge.WithOperationID("deleteWebhook"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register deleteWebhook route", forge.Error(err))
	}

	if err := g.POST("/webhooks/:webhookId/rotate-secret", a.rotateWebhookSecret,
		forge.WithSummary("Rotate secret"),
		forge.WithDescription("Generates a new signing secret for the webhook."),
		forge.WithOperationID("rotateWebhookSecret"),
		forge.WithResponseSchema(http.StatusOK, "New signing secret", SecretForgeResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register rotateWebhookSecret route", forge.Error(err))
	}

	if err := g.POST("/webhooks/:webhookId/test", a.testWebhook,
		forge.WithSummary("Test webhook"),
		forge.WithDescription("Sends one signed test delivery. Nothing is retried or recorded."),
		forge.WithOperationID("testWebhook"),
		forge.WithResponseSchema(http.StatusOK, "Test result", delivery.TestResult{}),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register testWebhook route", forge.Error(err))
	}

	if err := g.GET("/webhooks/:webhookId/logs", a.webhookLogs,
		forge.WithSummary("Delivery log"),
		forge.WithDescription("Returns the most recent delivery attempts, newest first."),
		forge.WithOperationID("listWebhookLogs"),
		forge.WithRequestSchema(WebhookLogsForgeRequest{}),
		forge.WithListResponse(webhook.DeliveryLog{}, http.StatusOK),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register listWebhookLogs route", forge.Error(err))
	}
}

func (a *ForgeAPI) createWebhook(ctx forge.Context, req *CreateWebhookForgeRequest) (*webhookCreated, error) {
	wh, err := a.folio.Webhooks().Create(ctx.Context(), webhook.Input{
		Name:        req.Name,
		URL:         req.URL,
		Description: req.Description,
		Events:      req.Events,
		Secret:      req.Secret,
		IsActive:    req.IsActive,
		SiteID:      req.SiteID,
		MaxRetries:  req.MaxRetries,
		RetryDelay:  req.RetryDelay,
	})
	if err != nil {
		return nil, mapError(err)
	}

	err = ctx.JSON(http.StatusCreated, webhookCreated{View: webhook.NewView(wh), Secret: wh.Secret})
	if err != nil {
		return nil, mapError(err)
	}

	//nolint:nilnil // response already written via ctx.JSON.
	return nil, nil
}

func (a *ForgeAPI) listWebhooks(ctx forge.Context, req *ListWebhooksForgeRequest) ([]webhook.View, error) {
	limit := req.Limit
	if limit == 0 {
		limit = 50
	}

	hooks, err := a.folio.Webhooks().List(ctx.Context(), webhook.ListOpts{
		Offset: req.Offset,
		Limit:  limit,
		SiteID: req.SiteID,
	})
	if err != nil {
		return nil, mapError(err)
	}

	views := make([]webhook.View, len(hooks))
	for i, wh := range hooks {
		views[i] = webhook.NewView(wh)
	}
	return views, nil
}

func (a *ForgeAPI) getWebhook(ctx forge.Context, req *WebhookForgeRequest) (*webhook.View, error) {
	whID, err := id.ParseWebhookID(req.WebhookID)
	if err != nil {
		return nil, forge.BadRequest("invalid webhook ID")
	}

	wh, getErr := a.folio.Webhooks().Get(ctx.Context(), whID)
	if getErr != nil {
		return nil, mapError(getErr)
	}

	view := webhook.NewView(wh)
	return &view, nil
}

func (a *ForgeAPI) updateWebhook(ctx forge.Context, req *UpdateWebhookForgeRequest) (*webhook.View, error) {
	whID, err := id.ParseWebhookID(req.WebhookID)
	if err != nil {
		return nil, forge.BadRequest("invalid webhook ID")
	}

	wh, updateErr := a.folio.Webhooks().Update(ctx.Context(), whID, webhook.UpdateInput{
		Name:        req.Name,
		URL:         req.URL,
		Description: req.Description,
		Events:      req.Events,
		IsActive:    req.IsActive,
		SiteID:      req.SiteID,
		MaxRetries:  req.MaxRetries,
		RetryDelay:  req.RetryDelay,
	})
	if updateErr != nil {
		return nil, mapError(updateErr)
	}

	view := webhook.NewView(wh)
	return &view, nil
}

func (a *ForgeAPI) deleteWebhook(ctx forge.Context, req *WebhookForgeRequest) (*webhook.View, error) {
	whID, err := id.ParseWebhookID(req.WebhookID)
	if err != nil {
		return nil, forge.BadRequest("invalid webhook ID")
	}

	if deleteErr := a.folio.Webhooks().Delete(ctx.Context(), whID); deleteErr != nil {
		return nil, mapError(deleteErr)
	}

	err = ctx.NoContent(http.StatusNoContent)
	if err != nil {
		return nil, mapError(err)
	}

	//nolint:nilnil // response already written via ctx.NoContent.
	return nil, nil
}

func (a *ForgeAPI) rotateWebhookSecret(ctx forge.Context, req *WebhookForgeRequest) (*SecretForgeResponse, error) {
	whID, err := id.ParseWebhookID(req.WebhookID)
	if err != nil {
		return nil, forge.BadRequest("invalid webhook ID")
	}

	secret, rotateErr := a.folio.Webhooks().RotateSecret(ctx.Context(), whID)
	if rotateErr != nil {
		return nil, mapError(rotateErr)
	}

	return &SecretForgeResponse{Secret: secret}, nil
}

func (a *ForgeAPI) testWebhook(ctx forge.Context, req *WebhookForgeRequest) (*delivery.TestResult, error) {
	whID, err := id.ParseWebhookID(req.WebhookID)
	if err != nil {
		return nil, forge.BadRequest("invalid webhook ID")
	}

	res, testErr := a.folio.TestWebhook(ctx.Context(), whID)
	if testErr != nil {
		return nil, mapError(testErr)
	}

	return &res, nil
}

func (a *ForgeAPI) webhookLogs(ctx forge.Context, req *WebhookLogsForgeRequest) ([]webhook.DeliveryLog, error) {
	whID, err := id.ParseWebhookID(req.WebhookID)
	if err != nil {
		return nil, forge.BadRequest("invalid webhook ID")
	}

	logs, logErr := a.folio.Webhooks().DeliveryLogs(ctx.Context(), whID, req.Limit)
	if logErr != nil {
		return nil, mapError(logErr)
	}

	return logs, nil
}

// ---------------------------------------------------------------------------
// Site routes
// ---------------------------------------------------------------------------

func (a *ForgeAPI) registerSiteRoutes(router forge.Router) {
	g := router.Group("", forge.WithGroupTags("sites"))

	if err := g.POST("/sites", a.createSite,
		forge.WithSummary("Create site"),
		forge.WithDescription("Registers a site. The API key is returned only in this response."),
		forge.WithOperationID("createSite"),
		forge.WithRequestSchema(CreateSiteForgeRequest{}),
		forge.WithCreatedResponse(siteCreated{}),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register createSite route", forge.Error(err))
	}

	if err := g.GET("/sites", a.listSites,
		forge.WithSummary("List sites"),
		forge.WithDescription("Returns a paginated list of sites."),
		forge.WithOperationID("listSites"),
		forge.WithRequestSchema(ListSitesForgeRequest{}),
		forge.WithListResponse(site.Site{}, http.StatusOK),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register listSites route", forge.Error(err))
	}

	if err := g.GET("/sites/:siteId", a.getSite,
		forge.WithSummary("Get site"),
		forge.WithDescription("Returns a site with its request counters."),
		forge.WithOperationID("getSite"),
		forge.WithResponseSchema(http.StatusOK, "Site details", site.Site{}),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register getSite route", forge.Error(err))
	}

	if err := g.PUT("/sites/:siteId", a.updateSite,
		forge.WithSummary("Update site"),
		forge.WithDescription("Updates mutable fields of a site."),
		forge.WithOperationID("updateSite"),
		forge.WithRequestSchema(UpdateSiteForgeRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Updated site", site.Site{}),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register updateSite route", forge.Error(err))
	}

	if err := g.DELETE("/sites/:siteId", a.deleteSite,
		forge.WithSummary("Delete site"),
		forge.WithDescription("Permanently deletes a site and invalidates its API key."),
		forge.WithOperationID("deleteSite"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register deleteSite route", forge.Error(err))
	}

	if err := g.POST("/sites/:siteId/rotate-key", a.rotateSiteKey,
		forge.WithSummary("Rotate API key"),
		forge.WithDescription("Replaces the site API key. The old key stops working immediately."),
		forge.WithOperationID("rotateSiteKey"),
		forge.WithResponseSchema(http.StatusOK, "New API key", APIKeyForgeResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register rotateSiteKey route", forge.Error(err))
	}
}

func (a *ForgeAPI) createSite(ctx forge.Context, req *CreateSiteForgeRequest) (*siteCreated, error) {
	s, key, err := a.folio.Sites().Create(ctx.Context(), site.Input{
		Name:           req.Name,
		Domain:         req.Domain,
		Description:    req.Description,
		AllowedOrigins: req.AllowedOrigins,
	})
	if err != nil {
		return nil, mapError(err)
	}

	err = ctx.JSON(http.StatusCreated, siteCreated{Site: s, APIKey: key})
	if err != nil {
		return nil, mapError(err)
	}

	//nolint:nilnil // response already written via ctx.JSON.
	return nil, nil
}

func (a *ForgeAPI) listSites(ctx forge.Context, req *ListSitesForgeRequest) ([]*site.Site, error) {
	limit := req.Limit
	if limit == 0 {
		limit = 50
	}

	sites, err := a.folio.Sites().List(ctx.Context(), site.ListOpts{
		Offset: req.Offset,
		Limit:  limit,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return sites, nil
}

func (a *ForgeAPI) getSite(ctx forge.Context, req *SiteForgeRequest) (*site.Site, error) {
	siteID, err := id.ParseSiteID(req.SiteID)
	if err != nil {
		return nil, forge.BadRequest("invalid site ID")
	}

	s, getErr := a.folio.Sites().Get(ctx.Context(), siteID)
	if getErr != nil {
		return nil, mapError(getErr)
	}

	return s, nil
}

func (a *ForgeAPI) updateSite(ctx forge.Context, req *UpdateSiteForgeRequest) (*site.Site, error) {
	siteID, err := id.ParseSiteID(req.SiteID)
	if err != nil {
		return nil, forge.BadRequest("invalid site ID")
	}

	s, updateErr := a.folio.Sites().Update(ctx.Context(), siteID, site.UpdateInput{
		Name:           req.Name,
		Domain:         req.Domain,
		Description:    req.Description,
		AllowedOrigins: req.AllowedOrigins,
		IsActive:       req.IsActive,
	})
	if updateErr != nil {
		return nil, mapError(updateErr)
	}

	return s, nil
}

func (a *ForgeAPI) deleteSite(ctx forge.Context, req *SiteForgeRequest) (*site.Site, error) {
	siteID, err := id.ParseSiteID(req.SiteID)
	if err != nil {
		return nil, forge.BadRequest("invalid site ID")
	}

	if deleteErr := a.folio.Sites().Delete(ctx.Context(), siteID); deleteErr != nil {
		return nil, mapError(deleteErr)
	}

	err = ctx.NoContent(http.StatusNoContent)
	if err != nil {
		return nil, mapError(err)
	}

	//nolint:nilnil // response already written via ctx.NoContent.
	return nil, nil
}

func (a *ForgeAPI) rotateSiteKey(ctx forge.Context, req *SiteForgeRequest) (*APIKeyForgeResponse, error) {
	siteID, err := id.ParseSiteID(req.SiteID)
	if err != nil {
		return nil, forge.BadRequest("invalid site ID")
	}

	key, rotateErr := a.folio.Sites().RotateAPIKey(ctx.Context(), siteID)
	if rotateErr != nil {
		return nil, mapError(rotateErr)
	}

	return &APIKeyForgeResponse{APIKey: key}, nil
}

// ---------------------------------------------------------------------------
// Form routes
// ---------------------------------------------------------------------------

func (a *ForgeAPI) registerFormRoutes(router forge.Router) {
	g := router.Group("", forge.WithGroupTags("forms"))

	if err := g.POST("/forms", a.createForm,
		forge.WithSummary("Create form"),
		forge.WithDescription("Registers a contact form."),
		forge.WithOperationID("createForm"),
		forge.WithRequestSchema(CreateFormForgeRequest{}),
		forge.WithCreatedResponse(form.Form{}),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register createForm route", forge.Error(err))
	}

	if err := g.GET("/forms", a.listForms,
		forge.WithSummary("List forms"),
		forge.WithDescription("Returns a paginated list of contact forms."),
		forge.WithOperationID("listForms"),
		forge.WithRequestSchema(ListFormsForgeRequest{}),
		forge.WithListResponse(form.Form{}, http.StatusOK),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register listForms route", forge.Error(err))
	}

	if err := g.GET("/forms/:formId", a.getForm,
		forge.WithSummary("Get form"),
		forge.WithDescription("Returns a contact form with its submission count."),
		forge.WithOperationID("getForm"),
		forge.WithResponseSchema(http.StatusOK, "Form details", form.Form{}),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register getForm route", forge.Error(err))
	}

	if err := g.PUT("/forms/:formId", a.updateForm,
		forge.WithSummary("Update form"),
		forge.WithDescription("Updates mutable fields of a contact form."),
		forge.WithOperationID("updateForm"),
		forge.WithRequestSchema(UpdateFormForgeRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Updated form", form.Form{}),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register updateForm route", forge.Error(err))
	}

	if err := g.DELETE("/forms/:formId", a.deleteForm,
		forge.WithSummary("Delete form"),
		forge.WithDescription("Deletes a contact form and all of its submissions."),
		forge.WithOperationID("deleteForm"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register deleteForm route", forge.Error(err))
	}

	if err := g.GET("/forms/:formId/submissions", a.listSubmissions,
		forge.WithSummary("List submissions"),
		forge.WithDescription("Returns submissions of a form, newest first."),
		forge.WithOperationID("listSubmissions"),
		forge.WithRequestSchema(ListSubmissionsForgeRequest{}),
		forge.WithListResponse(form.Submission{}, http.StatusOK),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register listSubmissions route", forge.Error(err))
	}

	if err := g.GET("/submissions/:submissionId", a.getSubmission,
		forge.WithSummary("Get submission"),
		forge.WithDescription("Returns a single form submission."),
		forge.WithOperationID("getSubmission"),
		forge.WithResponseSchema(http.StatusOK, "Submission details", form.Submission{}),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register getSubmission route", forge.Error(err))
	}

	if err := g.PATCH("/submissions/:submissionId", a.updateSubmission,
		forge.WithSummary("Update submission status"),
		forge.WithDescription("Marks a submission as read, unread or archived."),
		forge.WithOperationID("updateSubmission"),
		forge.WithRequestSchema(UpdateSubmissionForgeRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Updated submission", form.Submission{}),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register updateSubmission route", forge.Error(err))
	}
}

func (a *ForgeAPI) createForm(ctx forge.Context, req *CreateFormForgeRequest) (*form.Form, error) {
	f, err := a.folio.Forms().Create(ctx.Context(), form.Input{
		Name:           req.Name,
		Slug:           req.Slug,
		Description:    req.Description,
		Fields:         req.Fields,
		RecipientEmail: req.RecipientEmail,
		SiteID:         req.SiteID,
		IsActive:       req.IsActive,
	})
	if err != nil {
		return nil, mapError(err)
	}

	err = ctx.JSON(http.StatusCreated, f)
	if err != nil {
		return nil, mapError(err)
	}

	//nolint:nilnil // response already written via ctx.JSON.
	return nil, nil
}

func (a *ForgeAPI) listForms(ctx forge.Context, req *ListFormsForgeRequest) ([]*form.Form, error) {
	limit := req.Limit
	if limit == 0 {
		limit = 50
	}

	forms, err := a.folio.Forms().List(ctx.Context(), form.ListOpts{
		Offset: req.Offset,
		Limit:  limit,
		SiteID: req.SiteID,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return forms, nil
}

func (a *ForgeAPI) getForm(ctx forge.Context, req *FormForgeRequest) (*form.Form, error) {
	formID, err := id.ParseFormID(req.FormID)
	if err != nil {
		return nil, forge.BadRequest("invalid form ID")
	}

	f, getErr := a.folio.Forms().Get(ctx.Context(), formID)
	if getErr != nil {
		return nil, mapError(getErr)
	}

	return f, nil
}

func (a *ForgeAPI) updateForm(ctx forge.Context, req *UpdateFormForgeRequest) (*form.Form, error) {
	formID, err := id.ParseFormID(req.FormID)
	if err != nil {
		return nil, forge.BadRequest("invalid form ID")
	}

	f, updateErr := a.folio.Forms().Update(ctx.Context(), formID, form.UpdateInput{
		Name:           req.Name,
		Slug:           req.Slug,
		Description:    req.Description,
		Fields:         req.Fields,
		RecipientEmail: req.RecipientEmail,
		SiteID:         req.SiteID,
		IsActive:       req.IsActive,
	})
	if updateErr != nil {
		return nil, mapError(updateErr)
	}

	return f, nil
}

func (a *ForgeAPI) deleteForm(ctx forge.Context, req *FormForgeRequest) (*form.Form, error) {
	formID, err := id.ParseFormID(req.FormID)
	if err != nil {
		return nil, forge.BadRequest("invalid form ID")
	}

	if deleteErr := a.folio.Forms().Delete(ctx.Context(), formID); deleteErr != nil {
		return nil, mapError(deleteErr)
	}

	err = ctx.NoContent(http.StatusNoContent)
	if err != nil {
		return nil, mapError(err)
	}

	//nolint:nilnil // response already written via ctx.NoContent.
	return nil, nil
}

func (a *ForgeAPI) listSubmissions(ctx forge.Context, req *ListSubmissionsForgeRequest) ([]*form.Submission, error) {
	formID, err := id.ParseFormID(req.FormID)
	if err != nil {
		return nil, forge.BadRequest("invalid form ID")
	}

	limit := req.Limit
	if limit == 0 {
		limit = 50
	}

	opts := form.SubmissionListOpts{
		Offset: req.Offset,
		Limit:  limit,
	}
	if req.Status != "" {
		status := form.SubmissionStatus(req.Status)
		if !status.Valid() {
			return nil, forge.BadRequest("invalid status")
		}
		opts.Status = &status
	}

	subs, listErr := a.folio.Forms().ListSubmissions(ctx.Context(), formID, opts)
	if listErr != nil {
		return nil, mapError(listErr)
	}

	return subs, nil
}

func (a *ForgeAPI) getSubmission(ctx forge.Context, req *SubmissionForgeRequest) (*form.Submission, error) {
	subID, err := id.ParseSubmissionID(req.SubmissionID)
	if err != nil {
		return nil, forge.BadRequest("invalid submission ID")
	}

	sub, getErr := a.folio.Forms().GetSubmission(ctx.Context(), subID)
	if getErr != nil {
		return nil, mapError(getErr)
	}

	return sub, nil
}

func (a *ForgeAPI) updateSubmission(ctx forge.Context, req *UpdateSubmissionForgeRequest) (*form.Submission, error) {
	subID, err := id.ParseSubmissionID(req.SubmissionID)
	if err != nil {
		return nil, forge.BadRequest("invalid submission ID")
	}

	status := form.SubmissionStatus(req.Status)
	if !status.Valid() {
		return nil, forge.BadRequest("invalid status")
	}

	sub, updateErr := a.folio.Forms().UpdateSubmissionStatus(ctx.Context(), subID, status)
	if updateErr != nil {
		return nil, mapError(updateErr)
	}

	return sub, nil
}

// ---------------------------------------------------------------------------
// Media routes
// ---------------------------------------------------------------------------

// Uploads are multipart and stay on the net/http handler; Forge serves the
// metadata routes.
func (a *ForgeAPI) registerMediaRoutes(router forge.Router) {
	g := router.Group("", forge.WithGroupTags("media"))

	if err := g.GET("/media", a.listMedia,
		forge.WithSummary("List media"),
		forge.WithDescription("Returns uploaded files, newest first."),
		forge.WithOperationID("listMedia"),
		forge.WithRequestSchema(ListMediaForgeRequest{}),
		forge.WithListResponse(media.Media{}, http.StatusOK),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register listMedia route", forge.Error(err))
	}

	if err := g.GET("/media/:mediaId", a.getMedia,
		forge.WithSummary("Get media"),
		forge.WithDescription("Returns details of an uploaded file."),
		forge.WithOperationID("getMedia"),
		forge.WithResponseSchema(http.StatusOK, "Media details", media.Media{}),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register getMedia route", forge.Error(err))
	}

	if err := g.PUT("/media/:mediaId", a.updateMedia,
		forge.WithSummary("Update media"),
		forge.WithDescription("Updates alt text, description and tags."),
		forge.WithOperationID("updateMedia"),
		forge.WithRequestSchema(UpdateMediaForgeRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Updated media", media.Media{}),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register updateMedia route", forge.Error(err))
	}

	if err := g.DELETE("/media/:mediaId", a.deleteMedia,
		forge.WithSummary("Delete media"),
		forge.WithDescription("Deletes the stored file and its record."),
		forge.WithOperationID("deleteMedia"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register deleteMedia route", forge.Error(err))
	}
}

func (a *ForgeAPI) listMedia(ctx forge.Context, req *ListMediaForgeRequest) ([]*media.Media, error) {
	limit := req.Limit
	if limit == 0 {
		limit = 50
	}

	items, err := a.folio.Media().List(ctx.Context(), media.ListOpts{
		Offset:   req.Offset,
		Limit:    limit,
		MimeType: req.MimeType,
		Category: media.Category(req.Category),
		Tag:      req.Tag,
		Search:   req.Search,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return items, nil
}

func (a *ForgeAPI) getMedia(ctx forge.Context, req *MediaForgeRequest) (*media.Media, error) {
	mediaID, err := id.ParseMediaID(req.MediaID)
	if err != nil {
		return nil, forge.BadRequest("invalid media ID")
	}

	m, getErr := a.folio.Media().Get(ctx.Context(), mediaID)
	if getErr != nil {
		return nil, mapError(getErr)
	}

	return m, nil
}

func (a *ForgeAPI) updateMedia(ctx forge.Context, req *UpdateMediaForgeRequest) (*media.Media, error) {
	mediaID, err := id.ParseMediaID(req.MediaID)
	if err != nil {
		return nil, forge.BadRequest("invalid media ID")
	}

	m, updateErr := a.folio.Media().Update(ctx.Context(), mediaID, media.UpdateInput{
		AltText:     req.AltText,
		Description: req.Description,
		Tags:        req.Tags,
	})
	if updateErr != nil {
		return nil, mapError(updateErr)
	}

	return m, nil
}

func (a *ForgeAPI) deleteMedia(ctx forge.Context, req *MediaForgeRequest) (*media.Media, error) {
	mediaID, err := id.ParseMediaID(req.MediaID)
	if err != nil {
		return nil, forge.BadRequest("invalid media ID")
	}

	if deleteErr := a.folio.Media().Delete(ctx.Context(), mediaID); deleteErr != nil {
		return nil, mapError(deleteErr)
	}

	err = ctx.NoContent(http.StatusNoContent)
	if err != nil {
		return nil, mapError(err)
	}

	//nolint:nilnil // response already written via ctx.NoContent.
	return nil, nil
}

// ---------------------------------------------------------------------------
// Stats routes
// ---------------------------------------------------------------------------

func (a *ForgeAPI) registerStatsRoutes(router forge.Router) {
	g := router.Group("", forge.WithGroupTags("stats"))

	if err := g.GET("/stats", a.getStats,
		forge.WithSummary("System statistics"),
		forge.WithDescription("Returns the number of webhook deliveries not yet finished."),
		forge.WithOperationID("getStats"),
		forge.WithResponseSchema(http.StatusOK, "System statistics", StatsForgeResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register getStats route", forge.Error(err))
	}
}

func (a *ForgeAPI) getStats(ctx forge.Context, _ *StatsForgeRequest) (*StatsForgeResponse, error) {
	pending, err := a.folio.PendingDeliveries(ctx.Context())
	if err != nil {
		return nil, mapError(err)
	}

	return &StatsForgeResponse{PendingDeliveries: pending}, nil
}
