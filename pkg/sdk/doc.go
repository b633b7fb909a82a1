// Package storelens provides an embedded Go client for running guarded,
// read-only queries and schema introspection against a MongoDB-backed
// content store.
//
// The client wires the same allowlist, sanitizer and executor the
// storelens HTTP service uses, without the HTTP layer: every query is
// checked against a closed collection registry and a closed operator
// set before it reaches the store.
//
//	client, err := storelens.New(ctx,
//	    storelens.WithMongo("mongodb://localhost:27017", "pagegrid"),
//	)
//	if err != nil { ... }
//	defer client.Close(ctx)
//
//	res, err := client.Query(ctx, storelens.QueryRequest{
//	    Collection: "articles",
//	    Filter:     map[string]any{"status": "published"},
//	    Sort:       map[string]int{"published_at": -1},
//	    Limit:      20,
//	})
//
// By default the client serves the built-in PageGrid collection catalog.
// Applications embedding the client over their own store declare their
// collections instead:
//
//	client, err := storelens.New(ctx,
//	    storelens.WithMongo(uri, "inventory"),
//	    storelens.WithCollections(
//	        storelens.Collection{
//	            Name: "products",
//	            Fields: []storelens.Field{
//	                {Name: "sku", Type: storelens.FieldString, Required: true},
//	                {Name: "warehouse_id", Type: storelens.FieldReference, Ref: "warehouses"},
//	            },
//	            SearchableFields: []string{"sku"},
//	        },
//	        storelens.Collection{Name: "warehouses", Fields: []storelens.Field{
//	            {Name: "name", Type: storelens.FieldString, Required: true},
//	        }},
//	    ),
//	)
package storelens
