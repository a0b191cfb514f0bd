package main

import (
	"time"

	v1 "github.com/XWinterVarit/softfail_tester/pkg/v1"

	// Drivers for the DBClient "sqlite3" and "oracle" branches.
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/sijms/go-ora/v2"
)

func main() {
	t := v1.NewTester()

	// Stage failures caused by engine resource exhaustion are reported as
	// passed-with-caveat instead of failing the run.
	t.Tolerate(v1.IsKnownExhaustion)

	// Variables shared across stages
	var cacheServer *v1.FaultServer
	var db *v1.DBClient

	t.Stage("Setup", func() {
		// Fault server standing in for an execution-cache service.
		// Port 8081 for the cache endpoint.
		cacheServer = v1.RunFaultServer("8081", map[string]v1.FaultHandlerFunc{
			"/cache/put": func(req v1.Request) v1.Response {
				return v1.NewResponse(200, `{"status":"stored"}`)
			},
		})
		v1.Sleep(100 * time.Millisecond)

		db = v1.MustConnect("sqlite3", ":memory:")
		v1.AssertNoError(db.SetupTable("entries", true, []v1.Field{
			{Name: "seq", Type: "INTEGER"},
			{Name: "payload", Type: "TEXT"},
		}, nil))
	})

	t.Stage("Cache healthy", func() {
		resp := v1.MustSendRequest("http://localhost:8081/cache/put")
		v1.ExpectStatusCode(resp, 200)
		v1.ExpectJsonBody(resp, `{"status":"stored"}`)
	})

	t.Stage("Cache overflow tolerated", func() {
		// Flip the endpoint to exhaustion; the stage fails with the engine's
		// refusal, which the tolerance filter recognizes.
		cacheServer.Update(map[string]v1.FaultHandlerFunc{
			"/cache/put": v1.ServeExhaustion("Out of space in CodeCache"),
		})

		resp := v1.MustSendRequest("http://localhost:8081/cache/put")
		v1.AssertNoError(resp.Err())
	})

	t.Stage("SQLite probe", func() {
		v1.AssertNoError(db.FillRows("entries", 100, 256))
		result := db.MustFetch("SELECT COUNT(*) AS n FROM entries")
		result.GetRow(0).ExpectCond("n", v1.ConditionGreaterThanOrEqual, 100)
		v1.AssertNoError(db.CleanTable("entries"))
	})

	t.Stage("Redis probe", func() {
		// Expects a local redis with a small maxmemory; a full engine answers
		// with OOM, which IsRedisOOM tolerates.
		client := v1.MustConnectRedis("localhost:6379", "", 0)
		v1.AssertNoError(client.Fill("softfail", 10000, 4096))
		v1.AssertNoError(client.FlushAll())
	})

	t.Stage("Cleanup", func() {
		if cacheServer != nil {
			cacheServer.Stop()
		}
	})

	// Run the GUI to control the test execution
	v1.RunGUI(t)
}
