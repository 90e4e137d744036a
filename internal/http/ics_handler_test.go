package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestICSHandler_RequiresAuthentication(t *testing.T) {
	client, _ := newTestServer(t)

	resp, _ := client.doRaw(http.MethodGet, "/ics?farmId=any")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestICSHandler_FarmIDRequired(t *testing.T) {
	client, _ := newTestServer(t)
	client.signup("owner@example.com", "secret1")

	resp, _ := client.doRaw(http.MethodGet, "/ics")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestICSHandler_ExportsRemindersAndSheds(t *testing.T) {
	client, _ := newTestServer(t)
	client.signup("owner@example.com", "secret1")
	farmID := client.createFarm("Sunrise Farm")

	resp := client.do(http.MethodPost, farmDataPath(farmID, "reminders"),
		`[{"id":"r1","title":"Vaccination","date":"2026-09-15","notes":"Batch 4"}]`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = client.do(http.MethodPost, farmDataPath(farmID, "sheds"),
		`[{"id":"s1","name":"Shed A","placementDate":"2026-08-20"}]`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := client.doRaw(http.MethodGet, "/ics?farmId="+farmID)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/calendar; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "cluckhub.ics")

	assert.Contains(t, body, "BEGIN:VCALENDAR")
	assert.Contains(t, body, "SUMMARY:Vaccination")
	assert.Contains(t, body, "DTSTART;VALUE=DATE:20260915")
	assert.Contains(t, body, "SUMMARY:Placement: Shed A")
	assert.Contains(t, body, "DTSTART;VALUE=DATE:20260820")
	assert.Contains(t, body, "END:VCALENDAR")
}

func TestICSHandler_NonMemberForbidden(t *testing.T) {
	client, _ := newTestServer(t)
	client.signup("owner@example.com", "secret1")
	farmID := client.createFarm("Sunrise Farm")

	stranger := newTestClientSameServer(t, client)
	stranger.signup("stranger@example.com", "secret1")

	resp, _ := stranger.doRaw(http.MethodGet, "/ics?farmId="+farmID)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestICSHandler_GetOnly(t *testing.T) {
	client, _ := newTestServer(t)
	client.signup("owner@example.com", "secret1")
	farmID := client.createFarm("Sunrise Farm")

	resp := client.do(http.MethodPost, "/ics?farmId="+farmID, nil, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
