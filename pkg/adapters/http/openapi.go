package http

import (
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
)

// OpenAPI describes the HTTP API served by NewHandler.
func OpenAPI(version string) *openapi3.T {
	errs := openapi3.NewObjectSchema().
		WithProperty("errors", openapi3.NewArraySchema().WithItems(openapi3.NewObjectSchema().
			WithProperty("code", openapi3.NewStringSchema()).
			WithProperty("message", openapi3.NewStringSchema())))

	user := openapi3.NewObjectSchema().
		WithProperty("id", openapi3.NewStringSchema()).
		WithProperty("name", openapi3.NewStringSchema()).
		WithProperty("email", openapi3.NewStringSchema()).
		WithProperty("created_at", openapi3.NewDateTimeSchema())

	school := openapi3.NewObjectSchema().
		WithProperty("id", openapi3.NewStringSchema()).
		WithProperty("name", openapi3.NewStringSchema()).
		WithProperty("city", openapi3.NewStringSchema()).
		WithProperty("owner_id", openapi3.NewStringSchema()).
		WithProperty("created_at", openapi3.NewDateTimeSchema()).
		WithProperty("updated_at", openapi3.NewDateTimeSchema())

	overview := openapi3.NewObjectSchema().
		WithProperty("school", school).
		WithProperty("owner", user)

	named := func(props ...string) *openapi3.Schema {
		s := openapi3.NewObjectSchema()
		for _, p := range props {
			s.WithProperty(p, openapi3.NewStringSchema())
		}
		s.Required = props
		return s
	}

	op := func(id, summary string, ok int, body *openapi3.Schema) *openapi3.Operation {
		o := openapi3.NewOperation()
		o.OperationID = id
		o.Summary = summary
		o.AddResponse(ok, openapi3.NewResponse().WithDescription(http.StatusText(ok)).WithJSONSchema(body))
		o.AddResponse(0, openapi3.NewResponse().WithDescription("Failure").WithJSONSchema(errs))
		return o
	}
	withBody := func(o *openapi3.Operation, s *openapi3.Schema) *openapi3.Operation {
		o.RequestBody = &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchema(s)}
		return o
	}
	withID := func(o *openapi3.Operation) *openapi3.Operation {
		o.AddParameter(openapi3.NewPathParameter("id").WithSchema(openapi3.NewStringSchema()))
		return o
	}
	asActor := func(o *openapi3.Operation) *openapi3.Operation {
		o.AddParameter(openapi3.NewHeaderParameter(UserHeader).WithRequired(true).WithSchema(openapi3.NewStringSchema()))
		return o
	}

	list := op("listSchools", "List schools", http.StatusOK, openapi3.NewArraySchema().WithItems(school))
	list.AddParameter(openapi3.NewQueryParameter("owner").WithSchema(openapi3.NewStringSchema()))

	paths := openapi3.NewPaths()
	paths.Set("/users", &openapi3.PathItem{
		Post: withBody(op("registerUser", "Register a user", http.StatusCreated, user), named("name", "email")),
	})
	paths.Set("/schools", &openapi3.PathItem{
		Get:  list,
		Post: asActor(withBody(op("createSchool", "Open a school", http.StatusCreated, school), named("name", "city"))),
	})
	paths.Set("/schools/{id}", &openapi3.PathItem{
		Get:    withID(op("getSchool", "Get a school", http.StatusOK, school)),
		Delete: asActor(withID(op("deleteSchool", "Close a school", http.StatusOK, openapi3.NewBoolSchema()))),
	})
	paths.Set("/schools/{id}/overview", &openapi3.PathItem{
		Get: withID(op("getOverview", "Get a school with its owner", http.StatusOK, overview)),
	})
	paths.Set("/schools/{id}/name", &openapi3.PathItem{
		Put: asActor(withID(withBody(op("renameSchool", "Rename a school", http.StatusOK, school), named("name")))),
	})

	return &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   "courier",
			Version: version,
		},
		Paths: paths,
	}
}
