package repos

import (
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

func now() string { return time.Now().UTC().Format(time.RFC3339) }

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// sqlite allows a single writer; ":memory:" is also per-connection.
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	if err := seedSettings(db); err != nil {
		return nil, err
	}
	if err := seedCatalogIfEmpty(db); err != nil {
		return nil, err
	}
	if err := seedAccounts(db); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Store settings (singleton row id=1)
CREATE TABLE IF NOT EXISTS settings(
  id INTEGER PRIMARY KEY CHECK (id = 1),
  gst_percentage TEXT NOT NULL,
  delivery_charge TEXT NOT NULL,
  low_stock_threshold INTEGER NOT NULL,
  updated_at TEXT
);

-- Fragrances
CREATE TABLE IF NOT EXISTS fragrances(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_fragrances_name_nocase ON fragrances(LOWER(name));

-- Products
CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL DEFAULT '',
  base_price TEXT NOT NULL,
  average_rating REAL NOT NULL DEFAULT 0,
  total_reviews INTEGER NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_products_name     ON products(LOWER(name));
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);

CREATE TABLE IF NOT EXISTS product_images(
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  url TEXT NOT NULL,
  storage_key TEXT NOT NULL DEFAULT '',
  is_primary INTEGER NOT NULL DEFAULT 0,
  position INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_product_images_product ON product_images(product_id);

-- Variants (stock lives here)
CREATE TABLE IF NOT EXISTS variants(
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  type TEXT NOT NULL CHECK (type IN ('Standard','Premium','Deluxe')),
  size TEXT NOT NULL CHECK (size IN ('Small','Medium','Large')),
  fragrance TEXT NOT NULL,
  price_adjustment TEXT NOT NULL DEFAULT '0',
  stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
  sku TEXT NOT NULL UNIQUE
);
CREATE INDEX IF NOT EXISTS idx_variants_product ON variants(product_id);

-- Hero slides
CREATE TABLE IF NOT EXISTS hero_slides(
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  subtitle TEXT NOT NULL DEFAULT '',
  cta_text TEXT NOT NULL DEFAULT 'Shop Now',
  cta_link TEXT NOT NULL DEFAULT '/#products',
  bg_color TEXT NOT NULL DEFAULT '#f5f0eb',
  sort_order INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  image TEXT NOT NULL DEFAULT '',
  image_key TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL
);

-- Storefront users
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  is_verified INTEGER NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL DEFAULT ''
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS addresses(
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  label TEXT NOT NULL DEFAULT '',
  line1 TEXT NOT NULL,
  line2 TEXT NOT NULL DEFAULT '',
  city TEXT NOT NULL,
  state TEXT NOT NULL,
  postal_code TEXT NOT NULL,
  phone TEXT NOT NULL DEFAULT '',
  is_default INTEGER NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_addresses_user ON addresses(user_id);

-- Back-office accounts
CREATE TABLE IF NOT EXISTS admins(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('Admin','Owner')),
  created_at TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_admins_email ON admins(LOWER(email));

-- One live code per email and purpose
CREATE TABLE IF NOT EXISTS otp_codes(
  email TEXT NOT NULL,
  purpose TEXT NOT NULL CHECK (purpose IN ('registration','password_reset')),
  code_hash TEXT NOT NULL,
  expires_at TEXT NOT NULL,
  created_at TEXT NOT NULL,
  PRIMARY KEY (email, purpose)
);

-- Orders (never deleted)
CREATE TABLE IF NOT EXISTS orders(
  id TEXT PRIMARY KEY,
  order_number TEXT NOT NULL UNIQUE,
  user_id TEXT NOT NULL,
  user_name TEXT NOT NULL,
  user_email TEXT NOT NULL,
  subtotal TEXT NOT NULL,
  gst_percentage TEXT NOT NULL,
  gst TEXT NOT NULL,
  delivery_charge TEXT NOT NULL,
  total TEXT NOT NULL,
  payment_status TEXT NOT NULL DEFAULT 'Pending',
  order_status TEXT NOT NULL DEFAULT 'Pending',
  shipping_json TEXT NOT NULL,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_orders_user       ON orders(user_id);
CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at);

CREATE TABLE IF NOT EXISTS order_items(
  order_id TEXT NOT NULL REFERENCES orders(id),
  position INTEGER NOT NULL,
  product_id TEXT NOT NULL,
  variant_id TEXT NOT NULL,
  product_name TEXT NOT NULL,
  variant_details TEXT NOT NULL,
  qty INTEGER NOT NULL CHECK (qty >= 1),
  price TEXT NOT NULL,
  PRIMARY KEY (order_id, position)
);
CREATE INDEX IF NOT EXISTS idx_order_items_variant ON order_items(variant_id);

CREATE TABLE IF NOT EXISTS order_status_history(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  order_id TEXT NOT NULL REFERENCES orders(id),
  status TEXT NOT NULL,
  note TEXT NULL,
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_history_order ON order_status_history(order_id);
`
	_, err := db.Exec(schema)
	return err
}

func seedSettings(db *sqlx.DB) error {
	_, err := db.Exec(`
		INSERT INTO settings(id, gst_percentage, delivery_charge, low_stock_threshold, updated_at)
		VALUES (1, '18', '50', 10, ?)
		ON CONFLICT(id) DO NOTHING
	`, now())
	return err
}

// seedCatalogIfEmpty inserts the launch catalogue on a fresh database.
func seedCatalogIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM products`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting fragrances/products/variants/hero")
	ts := now()

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	tx.MustExec(`INSERT INTO fragrances(id,name,description,is_active,created_at) VALUES
	  ('frag-lavender','Lavender','Calming floral freshness',1,?),
	  ('frag-citrus','Citrus Burst','Zesty lemon and orange',1,?),
	  ('frag-mint','Eucalyptus Mint','Cool herbal lift',1,?),
	  ('frag-cedar','Cedarwood','Warm woody notes',0,?)`, ts, ts, ts, ts)

	tx.MustExec(`INSERT INTO products(id,name,description,category,base_price,created_at,updated_at) VALUES
	  ('kds-classic','Classic Shoe Deodoriser Pouch','Bamboo charcoal pouches that soak up odour and moisture.','Deodorisers','299',?,?),
	  ('kds-spray','Eco Refresh Spray','Plant-based enzyme spray for trainers and boots.','Sprays','449',?,?)`, ts, ts, ts, ts)

	tx.MustExec(`INSERT INTO product_images(id,product_id,url,storage_key,is_primary,position) VALUES
	  ('img-classic-1','kds-classic','/uploads/seed-classic.jpg','seed-classic.jpg',1,0),
	  ('img-spray-1','kds-spray','/uploads/seed-spray.jpg','seed-spray.jpg',1,0)`)

	tx.MustExec(`INSERT INTO variants(id,product_id,type,size,fragrance,price_adjustment,stock,sku) VALUES
	  ('var-classic-std-s-lav','kds-classic','Standard','Small','Lavender','0',40,'KDS-CL-STD-S-LAV'),
	  ('var-classic-prm-m-cit','kds-classic','Premium','Medium','Citrus Burst','100',8,'KDS-CL-PRM-M-CIT'),
	  ('var-classic-dlx-l-mnt','kds-classic','Deluxe','Large','Eucalyptus Mint','250',0,'KDS-CL-DLX-L-MNT'),
	  ('var-spray-std-m-cit','kds-spray','Standard','Medium','Citrus Burst','0',25,'KDS-SP-STD-M-CIT')`)

	tx.MustExec(`INSERT INTO hero_slides(id,title,subtitle,cta_text,cta_link,bg_color,sort_order,is_active,created_at) VALUES
	  ('hero-1','Kicks Don''t Stink','Eco deodorisers for every pair','Shop Now','/#products','#f5f0eb',0,1,?),
	  ('hero-2','Fresh From Nature','Charcoal, bamboo and essential oils','Shop Now','/#products','#e8f0e3',1,1,?)`, ts, ts)

	return tx.Commit()
}

// seedAccounts ensures the demo shopper and owner exist (idempotent).
func seedAccounts(db *sqlx.DB) error {
	hash, err := bcrypt.GenerateFromPassword([]byte("Passw0rd!"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	ts := now()

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
		INSERT INTO users(id,email,name,password_hash,is_verified,created_at)
		VALUES('u-asha','asha@kicks.test','Asha',?,1,?)
		ON CONFLICT(email) DO NOTHING
	`, string(hash), ts); err != nil {
		return err
	}
	if _, err := tx.Exec(`
		INSERT INTO admins(id,email,name,password_hash,role,created_at)
		VALUES('a-owner','owner@kicks.test','Store Owner',?,'Owner',?)
		ON CONFLICT(email) DO NOTHING
	`, string(hash), ts); err != nil {
		return err
	}
	return tx.Commit()
}
