// Command converter fetches customer records, previews them and exports
// them as spreadsheets and documents.
package main

func main() {
	Execute()
}
