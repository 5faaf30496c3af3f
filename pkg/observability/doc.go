/*
Package observability provides Prometheus instrumentation for the mediator.

Metrics holds the collectors recorded by behavior.Metrics for every dispatched
request and by NotificationObserver for every delivered notification. Handler
exposes them for scraping.
*/
package observability
