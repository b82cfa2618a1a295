package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang/glog"
	"github.com/olekukonko/tablewriter"

	"github.com/mqy/minichat/store"
)

// inspect prints the participants and messages of a record store as tables.
// Stop the server before inspecting a bolt file, bolt allows a single opener.

var (
	flagStore    = flag.String("store", store.DriverBolt, "record store driver: mysql, sqlite3 or bolt")
	flagStoreDsn = flag.String("db", "minichat.db", "record store dsn, the data file path for bolt")
)

func main() {
	flag.Parse()
	defer glog.Flush()

	if err := inspect(context.Background()); err != nil {
		glog.Errorf("inspect: %v", err)
		glog.Flush()
		os.Exit(1)
	}
}

func newTable(header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

func inspect(ctx context.Context) error {
	s, err := store.Open(*flagStore, *flagStoreDsn)
	if err != nil {
		return err
	}
	defer s.Close()

	participants, err := s.FindParticipants(ctx, store.ParticipantFilter{})
	if err != nil {
		return fmt.Errorf("find participants: %v", err)
	}
	now := store.NowMillis(time.Now())

	fmt.Printf("participants: %d\n", len(participants))
	table := newTable("ID", "Name", "Last heartbeat", "Silent (s)")
	for _, p := range participants {
		table.Append([]string{
			p.ID,
			p.Name,
			time.UnixMilli(p.LastHeartbeat).Format(time.RFC3339),
			strconv.FormatInt(store.ElapsedSeconds(now, p.LastHeartbeat), 10),
		})
	}
	table.Render()

	msgs, err := s.FindMessages(ctx)
	if err != nil {
		return fmt.Errorf("find messages: %v", err)
	}

	fmt.Printf("\nmessages: %d\n", len(msgs))
	table = newTable("ID", "Time", "Type", "From", "To", "Text")
	for _, m := range msgs {
		table.Append([]string{m.ID, m.Time, string(m.Kind), m.From, m.To, m.Text})
	}
	table.Render()
	return nil
}
