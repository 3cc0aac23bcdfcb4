// Package basekit assembles the building blocks of a small SaaS backend:
// an embedded typed collection store with pluggable backends, a
// credential and session manager, and OAuth login against external
// identity providers.
//
// [New] wires everything from a [Config]:
//
//	cfg, err := basekit.LoadConfig("basekit.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	app, err := basekit.New(ctx, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer app.Close()
//
//	u, t, err := app.Auth.LoginWithPassword(ctx, "jo@example.com", password,
//		auth.DurationMedium, auth.ClientInfo{Context: "web"})
//
// The sub-packages are usable on their own; see pkg/store for the
// collection store, pkg/auth for sessions, pkg/oauth for provider login
// and pkg/user for the account records.
package basekit
